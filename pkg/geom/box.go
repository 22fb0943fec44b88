package geom

import (
	"math"

	"regiontree/pkg/common"
)

// Box is an axis-aligned box given by its lower and upper corners.
// Callers are expected to keep lower <= upper on every axis.
type Box struct {
	lower, upper Point
}

func NewBox(lower, upper Point) (Box, error) {
	if lower.dims != upper.dims {
		return Box{}, &common.DimensionMismatchError{Expected: lower.dims, Actual: upper.dims}
	}
	return Box{lower: lower, upper: upper}, nil
}

// Box2 is shorthand for a 2D box.
func Box2(x1, y1, x2, y2 float64) Box {
	return Box{lower: Pt(x1, y1), upper: Pt(x2, y2)}
}

// Box3 is shorthand for a 3D box.
func Box3(x1, y1, z1, x2, y2, z2 float64) Box {
	return Box{lower: Pt3(x1, y1, z1), upper: Pt3(x2, y2, z2)}
}

// Around returns the box extending half on every axis from center.
func Around(center Point, half float64) Box {
	b := Box{lower: center, upper: center}
	for i := 0; i < center.dims; i++ {
		b.lower.coords[i] -= half
		b.upper.coords[i] += half
	}
	return b
}

func (b Box) Lower() Point { return b.lower }
func (b Box) Upper() Point { return b.upper }
func (b Box) Dims() int    { return b.lower.dims }

func (b Box) Center() Point {
	c := b.lower
	for i := 0; i < c.dims; i++ {
		c.coords[i] = (b.lower.coords[i] + b.upper.coords[i]) / 2
	}
	return c
}

// Length is the extent of b along axis.
func (b Box) Length(axis int) float64 {
	return b.upper.Coord(axis) - b.lower.Coord(axis)
}

// Contains reports whether k lies entirely inside b.
func (b Box) Contains(k Containable) bool {
	return k.Within(b)
}

// Within reports whether o fully encloses b. Shared faces count as inside.
func (b Box) Within(o Box) bool {
	if b.Dims() != o.Dims() {
		return false
	}
	for i := 0; i < b.Dims(); i++ {
		if b.lower.coords[i] < o.lower.coords[i] || b.upper.coords[i] > o.upper.coords[i] {
			return false
		}
	}
	return true
}

// Intersects reports whether b and o share at least one point. Boxes that only
// touch along a face or corner intersect.
func (b Box) Intersects(o Box) bool {
	if b.Dims() != o.Dims() {
		return false
	}
	for i := 0; i < b.Dims(); i++ {
		if b.lower.coords[i] > o.upper.coords[i] || o.lower.coords[i] > b.upper.coords[i] {
			return false
		}
	}
	return true
}

func (b Box) Same(o Box) bool { return b == o }

// Merge returns the smallest box enclosing both b and o.
func (b Box) Merge(o Box) (Box, error) {
	if b.Dims() != o.Dims() {
		return Box{}, &common.DimensionMismatchError{Expected: b.Dims(), Actual: o.Dims()}
	}
	m := b
	for i := 0; i < b.Dims(); i++ {
		m.lower.coords[i] = math.Min(b.lower.coords[i], o.lower.coords[i])
		m.upper.coords[i] = math.Max(b.upper.coords[i], o.upper.coords[i])
	}
	return m, nil
}

// SplitMid cuts b in two at its midpoint on axis. The halves share the
// split plane.
func (b Box) SplitMid(axis int) (Box, Box) {
	mid := (b.lower.Coord(axis) + b.upper.Coord(axis)) / 2
	lo, hi := b, b
	lo.upper.coords[axis] = mid
	hi.lower.coords[axis] = mid
	return lo, hi
}

// Subregions returns the 2^Dims boxes obtained by splitting b at its midpoint
// on every axis. Bit a of an index is set when that box covers the upper half
// of axis a.
func (b Box) Subregions() []Box {
	out := []Box{b}
	for axis := 0; axis < b.Dims(); axis++ {
		next := make([]Box, len(out)*2)
		for i, r := range out {
			lo, hi := r.SplitMid(axis)
			next[i] = lo
			next[i|1<<axis] = hi
		}
		out = next
	}
	return out
}

// ZCode maps p onto the Morton curve over b. Coordinates outside b are clamped
// to its faces.
func (b Box) ZCode(p Point) uint64 {
	var grid [MaxDims]uint32
	scale := float64(common.Max2D)
	if b.Dims() == 3 {
		scale = float64(common.Max3D)
	}
	for i := 0; i < b.Dims() && i < p.dims; i++ {
		l := b.Length(i)
		if l <= 0 {
			continue
		}
		t := (p.coords[i] - b.lower.coords[i]) / l
		t = math.Max(0, math.Min(1, t))
		grid[i] = uint32(t * scale)
	}

	var code uint64
	if b.Dims() == 3 {
		code, _ = common.Encode3D(grid[0], grid[1], grid[2])
	} else {
		code, _ = common.Encode2D(grid[0], grid[1])
	}
	return code
}

func (b Box) String() string {
	return "[" + b.lower.String() + " " + b.upper.String() + "]"
}
