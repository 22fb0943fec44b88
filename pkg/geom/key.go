package geom

import "fmt"

// Containable is anything a Box can test for enclosure.
type Containable interface {
	Within(b Box) bool
}

// Key is the constraint for tree keys. Both Point and Box satisfy it.
type Key interface {
	comparable
	fmt.Stringer
	Containable
	Dims() int
	Center() Point
}
