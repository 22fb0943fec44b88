package common

import "errors"

// Grid resolution per axis for Morton codes.
const (
	Bits2D = 16
	Bits3D = 10

	Max2D = 1<<Bits2D - 1
	Max3D = 1<<Bits3D - 1
)

var errCoordRange = errors.New("coordinate out of bounds")

// Part1By1 spreads the low 16 bits of n so that one zero bit sits between each.
func Part1By1(n uint32) uint64 {
	x := uint64(n) & 0x0000ffff
	x = (x ^ (x << 8)) & 0x00ff00ff
	x = (x ^ (x << 4)) & 0x0f0f0f0f
	x = (x ^ (x << 2)) & 0x33333333
	x = (x ^ (x << 1)) & 0x55555555
	return x
}

// Compact1By1 is the inverse of Part1By1.
func Compact1By1(x uint64) uint32 {
	x &= 0x55555555
	x = (x ^ (x >> 1)) & 0x33333333
	x = (x ^ (x >> 2)) & 0x0f0f0f0f
	x = (x ^ (x >> 4)) & 0x00ff00ff
	x = (x ^ (x >> 8)) & 0x0000ffff
	return uint32(x)
}

// Part1By2 spreads the low 10 bits of n so that two zero bits sit between each.
func Part1By2(n uint32) uint64 {
	x := uint64(n)
	x &= 0x000003ff
	x = (x ^ (x << 16)) & 0xff0000ff
	x = (x ^ (x << 8)) & 0x0300f00f
	x = (x ^ (x << 4)) & 0x030c30c3
	x = (x ^ (x << 2)) & 0x09249249
	return x
}

// Compact1By2 is the inverse of Part1By2.
func Compact1By2(x uint64) uint32 {
	x &= 0x09249249
	x = (x ^ (x >> 2)) & 0x030c30c3
	x = (x ^ (x >> 4)) & 0x0300f00f
	x = (x ^ (x >> 8)) & 0xff0000ff
	x = (x ^ (x >> 16)) & 0x000003ff
	return uint32(x)
}

func Encode2D(x, y uint32) (uint64, error) {
	if x > Max2D || y > Max2D {
		return 0, errCoordRange
	}
	return Part1By1(y)<<1 | Part1By1(x), nil
}

func Decode2D(code uint64) (uint32, uint32) {
	return Compact1By1(code), Compact1By1(code >> 1)
}

func Encode3D(x, y, z uint32) (uint64, error) {
	if x > Max3D || y > Max3D || z > Max3D {
		return 0, errCoordRange
	}
	return Part1By2(z)<<2 | Part1By2(y)<<1 | Part1By2(x), nil
}

func Decode3D(code uint64) (uint32, uint32, uint32) {
	return Compact1By2(code), Compact1By2(code >> 1), Compact1By2(code >> 2)
}
