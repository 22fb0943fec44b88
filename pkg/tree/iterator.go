package tree

import (
	"sync/atomic"

	"regiontree/pkg/common"
	"regiontree/pkg/geom"
)

// walker is a depth-first node walk. Children are pushed only when their
// region satisfies pred, so rejected subtrees are never visited.
type walker[K geom.Key, V comparable] struct {
	stack []*node[K, V]
	pred  Predicate
}

func newWalker[K geom.Key, V comparable](root *node[K, V], pred Predicate) walker[K, V] {
	if pred == nil {
		pred = Everything
	}
	return walker[K, V]{stack: []*node[K, V]{root}, pred: pred}
}

func (w *walker[K, V]) next() *node[K, V] {
	top := len(w.stack) - 1
	if top < 0 {
		return nil
	}
	n := w.stack[top]
	w.stack[top] = nil
	w.stack = w.stack[:top]

	// Reverse push so children pop in index order.
	for i := n.fanout - 1; i >= 0; i-- {
		if c := n.children[i]; c != nil && w.pred(c.region) {
			w.stack = append(w.stack, c)
		}
	}
	return n
}

// split hands the oldest stacked node, usually the largest pending subtree,
// to a new walker.
func (w *walker[K, V]) split() (walker[K, V], bool) {
	if len(w.stack) == 0 {
		return walker[K, V]{}, false
	}
	n := w.stack[0]
	w.stack = w.stack[1:]
	return walker[K, V]{stack: []*node[K, V]{n}, pred: w.pred}, true
}

func (w *walker[K, V]) pending() int { return len(w.stack) }

// Iterator walks the entries of a tree lazily:
//
//	it := t.SelectIter(tree.Intersecting(q))
//	for it.Next() {
//		e := it.Entry()
//		...
//	}
//	if err := it.Err(); err != nil {
//		...
//	}
//
// On a mutable tree, Next stops and Err reports a ConcurrentModificationError
// once the tree has changed since the iterator was created.
type Iterator[K geom.Key, V comparable] struct {
	w        walker[K, V]
	version  *atomic.Uint64
	expected uint64
	cur      []Entry[K, V]
	entry    Entry[K, V]
	valid    bool
	done     bool
	err      error
	onAbort  func(error)
}

func (it *Iterator[K, V]) check() error {
	if it.version == nil {
		return nil
	}
	if actual := it.version.Load(); actual != it.expected {
		return &common.ConcurrentModificationError{Expected: it.expected, Actual: actual}
	}
	return nil
}

// Next advances to the next entry. It returns false when the walk is done or
// failed.
func (it *Iterator[K, V]) Next() bool {
	it.valid = false
	if it.err != nil || it.done {
		return false
	}
	if err := it.check(); err != nil {
		it.err = err
		if it.onAbort != nil {
			it.onAbort(err)
		}
		return false
	}
	for len(it.cur) == 0 {
		n := it.w.next()
		if n == nil {
			it.done = true
			return false
		}
		it.cur = n.entries
	}
	it.entry = it.cur[0]
	it.cur = it.cur[1:]
	it.valid = true
	return true
}

// Entry returns the entry Next moved to. It panics if Next has not returned
// true.
func (it *Iterator[K, V]) Entry() Entry[K, V] {
	if !it.valid {
		panic("tree: Entry called without a successful Next")
	}
	return it.entry
}

func (it *Iterator[K, V]) Key() K   { return it.Entry().Key }
func (it *Iterator[K, V]) Value() V { return it.Entry().Value }

// Err returns the error that stopped the walk, if any.
func (it *Iterator[K, V]) Err() error { return it.err }

// Split moves one pending subtree into a new iterator that can be consumed on
// another goroutine. It returns nil when nothing is left to hand off. The two
// iterators never yield the same entry.
func (it *Iterator[K, V]) Split() *Iterator[K, V] {
	if it.err != nil || it.done {
		return nil
	}
	w, ok := it.w.split()
	if !ok {
		return nil
	}
	return &Iterator[K, V]{
		w:        w,
		version:  it.version,
		expected: it.expected,
		onAbort:  it.onAbort,
	}
}
