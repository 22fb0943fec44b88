package tree

import (
	"fmt"

	"regiontree/pkg/geom"
)

const maxFanout = 1 << geom.MaxDims

// node owns a region, the entries stored directly at it and its children.
// Children are created the first time an entry is routed to them.
type node[K geom.Key, V comparable] struct {
	region     geom.Box
	subregions [maxFanout]geom.Box
	children   [maxFanout]*node[K, V]
	fanout     int
	entries    []Entry[K, V]
	maxSize    int
	forked     bool
}

func newNode[K geom.Key, V comparable](region geom.Box, maxSize int) *node[K, V] {
	n := &node[K, V]{region: region, maxSize: maxSize}
	n.fanout = copy(n.subregions[:], region.Subregions())
	return n
}

// route returns the first subregion that fully contains key, or -1 when the
// key straddles a split plane.
func (n *node[K, V]) route(key K) int {
	for i := 0; i < n.fanout; i++ {
		if key.Within(n.subregions[i]) {
			return i
		}
	}
	return -1
}

func (n *node[K, V]) child(i int) *node[K, V] {
	c := n.children[i]
	if c == nil {
		c = newNode[K, V](n.subregions[i], n.maxSize)
		n.children[i] = c
	}
	return c
}

// splittable reports whether halving the region still shrinks it on some axis.
func (n *node[K, V]) splittable() bool {
	for axis := 0; axis < n.region.Dims(); axis++ {
		lo, hi := n.region.Lower().Coord(axis), n.region.Upper().Coord(axis)
		mid := (lo + hi) / 2
		if lo < mid && mid < hi {
			return true
		}
	}
	return false
}

// insert stores e in this subtree. The caller guarantees the region contains
// e.Key. It returns how many nodes split along the way.
func (n *node[K, V]) insert(e Entry[K, V]) int {
	if n.forked {
		if i := n.route(e.Key); i >= 0 {
			return n.child(i).insert(e)
		}
	}
	n.entries = append(n.entries, e)
	if len(n.entries) > n.maxSize && !n.forked && n.splittable() {
		return n.split()
	}
	return 0
}

// split forks the node and pushes every entry that fits a single subregion
// down one level. Straddling entries stay here.
func (n *node[K, V]) split() int {
	n.forked = true
	pending := n.entries
	n.entries = nil

	splits := 1
	for _, e := range pending {
		if i := n.route(e.Key); i >= 0 {
			splits += n.child(i).insert(e)
		} else {
			n.entries = append(n.entries, e)
		}
	}
	return splits
}

// removeWhere drops every local entry matching match, then descends into the
// children whose region satisfies descend. Removed values are appended to out.
func (n *node[K, V]) removeWhere(match func(Entry[K, V]) bool, descend Predicate, out []V) []V {
	kept := n.entries[:0]
	for _, e := range n.entries {
		if match(e) {
			out = append(out, e.Value)
		} else {
			kept = append(kept, e)
		}
	}
	clear(n.entries[len(kept):])
	n.entries = kept

	for i := 0; i < n.fanout; i++ {
		if c := n.children[i]; c != nil && descend(c.region) {
			out = c.removeWhere(match, descend, out)
		}
	}
	return out
}

func (n *node[K, V]) valueCount() int {
	count := len(n.entries)
	for i := 0; i < n.fanout; i++ {
		if c := n.children[i]; c != nil {
			count += c.valueCount()
		}
	}
	return count
}

func (n *node[K, V]) nodeCount() int {
	count := 1
	for i := 0; i < n.fanout; i++ {
		if c := n.children[i]; c != nil {
			count += c.nodeCount()
		}
	}
	return count
}

func (n *node[K, V]) depth() int {
	deepest := 0
	for i := 0; i < n.fanout; i++ {
		if c := n.children[i]; c != nil {
			deepest = max(deepest, c.depth())
		}
	}
	return deepest + 1
}

func (n *node[K, V]) empty() bool {
	if len(n.entries) > 0 {
		return false
	}
	for i := 0; i < n.fanout; i++ {
		if c := n.children[i]; c != nil && !c.empty() {
			return false
		}
	}
	return true
}

func (n *node[K, V]) checkIntegrity(seen map[*node[K, V]]struct{}) error {
	if want := 1 << n.region.Dims(); n.fanout != want {
		return fmt.Errorf("node %s: %d subregions, want %d", n.region, n.fanout, want)
	}
	for _, e := range n.entries {
		if !e.Key.Within(n.region) {
			return fmt.Errorf("node %s: entry %s outside region", n.region, e)
		}
	}
	for i := 0; i < n.fanout; i++ {
		for j := i + 1; j < n.fanout; j++ {
			if n.subregions[i].Same(n.subregions[j]) {
				return fmt.Errorf("node %s: subregions %d and %d are identical", n.region, i, j)
			}
		}
	}
	if !n.forked && len(n.entries) > n.maxSize && n.splittable() {
		return fmt.Errorf("node %s: %d entries exceed max %d without a split", n.region, len(n.entries), n.maxSize)
	}

	for i := 0; i < n.fanout; i++ {
		c := n.children[i]
		if c == nil {
			continue
		}
		if !n.forked {
			return fmt.Errorf("node %s: child %d present before split", n.region, i)
		}
		if _, dup := seen[c]; dup {
			return fmt.Errorf("node %s: child %d is shared with another parent", n.region, i)
		}
		seen[c] = struct{}{}
		if !c.region.Same(n.subregions[i]) {
			return fmt.Errorf("node %s: child %d covers %s, want %s", n.region, i, c.region, n.subregions[i])
		}
		if err := c.checkIntegrity(seen); err != nil {
			return err
		}
	}
	return nil
}
