package tree

import (
	"fmt"

	"regiontree/pkg/geom"
)

// Entry is a single key/value association. Two entries are the same entry
// when both key and value are equal.
type Entry[K geom.Key, V comparable] struct {
	Key   K
	Value V
}

func NewEntry[K geom.Key, V comparable](key K, value V) Entry[K, V] {
	return Entry[K, V]{Key: key, Value: value}
}

func (e Entry[K, V]) String() string {
	return fmt.Sprintf("%s=%v", e.Key, e.Value)
}

// Predicate decides whether a traversal descends into a node covering region.
type Predicate func(region geom.Box) bool

// Everything accepts every region.
func Everything(geom.Box) bool { return true }

// Intersecting accepts regions that share at least one point with b.
func Intersecting(b geom.Box) Predicate {
	return func(region geom.Box) bool {
		return region.Intersects(b)
	}
}

// Enclosing accepts regions that fully contain k.
func Enclosing(k geom.Containable) Predicate {
	return func(region geom.Box) bool {
		return k.Within(region)
	}
}
