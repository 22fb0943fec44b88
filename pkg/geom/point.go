package geom

import (
	"math"
	"strconv"
	"strings"

	"regiontree/pkg/common"
)

// MaxDims is the largest dimension count a Point can carry.
const MaxDims = 3

// Point is an immutable coordinate tuple of 1 to MaxDims dimensions.
// Points are comparable; == is exact per-coordinate equality.
type Point struct {
	coords [MaxDims]float64
	dims   int
}

// NewPoint builds a point from its coordinates.
func NewPoint(coords ...float64) (Point, error) {
	if len(coords) < 1 || len(coords) > MaxDims {
		return Point{}, &common.DimensionsError{Dims: len(coords), Min: 1, Max: MaxDims}
	}
	p := Point{dims: len(coords)}
	copy(p.coords[:], coords)
	return p, nil
}

// Pt is shorthand for a 2D point.
func Pt(x, y float64) Point {
	return Point{coords: [MaxDims]float64{x, y}, dims: 2}
}

// Pt3 is shorthand for a 3D point.
func Pt3(x, y, z float64) Point {
	return Point{coords: [MaxDims]float64{x, y, z}, dims: 3}
}

func (p Point) Dims() int { return p.dims }

// Coord returns the coordinate on axis, which must be below Dims.
func (p Point) Coord(axis int) float64 {
	return p.coords[:p.dims][axis]
}

func (p Point) Coords() []float64 {
	out := make([]float64, p.dims)
	copy(out, p.coords[:p.dims])
	return out
}

func (p Point) Same(o Point) bool { return p == o }

// Center returns p itself, so points satisfy Key.
func (p Point) Center() Point { return p }

// Within reports whether b contains p, inclusive on every side.
func (p Point) Within(b Box) bool {
	if p.dims != b.Dims() {
		return false
	}
	for i := 0; i < p.dims; i++ {
		c := p.coords[i]
		if c < b.lower.coords[i] || c > b.upper.coords[i] {
			return false
		}
	}
	return true
}

// Bounds returns the zero-extent box at p.
func (p Point) Bounds() Box {
	return Box{lower: p, upper: p}
}

func (p Point) DistanceSq(o Point) (float64, error) {
	if p.dims != o.dims {
		return 0, &common.DimensionMismatchError{Expected: p.dims, Actual: o.dims}
	}
	var sum float64
	for i := 0; i < p.dims; i++ {
		d := p.coords[i] - o.coords[i]
		sum += d * d
	}
	return sum, nil
}

func (p Point) Distance(o Point) (float64, error) {
	sq, err := p.DistanceSq(o)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(sq), nil
}

// Merge returns the smallest box covering both b and p. If b already
// contains p, b is returned unchanged.
func (p Point) Merge(b Box) (Box, error) {
	if p.dims != b.Dims() {
		return Box{}, &common.DimensionMismatchError{Expected: b.Dims(), Actual: p.dims}
	}
	if p.Within(b) {
		return b, nil
	}
	return b.Merge(p.Bounds())
}

func (p Point) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i := 0; i < p.dims; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.FormatFloat(p.coords[i], 'g', -1, 64))
	}
	sb.WriteByte(')')
	return sb.String()
}
