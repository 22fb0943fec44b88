package tree

import (
	"context"
	"iter"

	"regiontree/pkg/geom"
)

// walk feeds fn every entry below nodes accepted by pred until fn returns
// false. It runs inside a single call, so no version check is needed.
func (t *Tree[K, V]) walk(pred Predicate, fn func(Entry[K, V]) bool) {
	w := newWalker(t.root, pred)
	for n := w.next(); n != nil; n = w.next() {
		for _, e := range n.entries {
			if !fn(e) {
				return
			}
		}
	}
}

func (t *Tree[K, V]) Keys() []K             { return t.SelectKeys(Everything) }
func (t *Tree[K, V]) Values() []V           { return t.SelectValues(Everything) }
func (t *Tree[K, V]) Entries() []Entry[K, V] { return t.SelectEntries(Everything) }

// SelectEntries returns the entries stored in every node reachable from the
// root through regions accepted by pred. Entries in accepted nodes are
// returned as-is; callers wanting exact key filtering apply it afterwards.
func (t *Tree[K, V]) SelectEntries(pred Predicate) []Entry[K, V] {
	var out []Entry[K, V]
	t.walk(pred, func(e Entry[K, V]) bool {
		out = append(out, e)
		return true
	})
	return out
}

func (t *Tree[K, V]) SelectKeys(pred Predicate) []K {
	var out []K
	t.walk(pred, func(e Entry[K, V]) bool {
		out = append(out, e.Key)
		return true
	})
	return out
}

func (t *Tree[K, V]) SelectValues(pred Predicate) []V {
	var out []V
	t.walk(pred, func(e Entry[K, V]) bool {
		out = append(out, e.Value)
		return true
	})
	return out
}

// SearchWithin returns the entries whose key lies entirely inside q.
func (t *Tree[K, V]) SearchWithin(q geom.Box) []Entry[K, V] {
	var out []Entry[K, V]
	t.walk(Intersecting(q), func(e Entry[K, V]) bool {
		if e.Key.Within(q) {
			out = append(out, e)
		}
		return true
	})
	return out
}

// SearchRadius returns the entries whose key center is at most r from center.
func (t *Tree[K, V]) SearchRadius(center geom.Point, r float64) []Entry[K, V] {
	var out []Entry[K, V]
	t.walk(Intersecting(geom.Around(center, r)), func(e Entry[K, V]) bool {
		if d, err := e.Key.Center().Distance(center); err == nil && d <= r {
			out = append(out, e)
		}
		return true
	})
	return out
}

// Iter returns an iterator over every entry.
func (t *Tree[K, V]) Iter() *Iterator[K, V] {
	return t.SelectIter(Everything)
}

// SelectIter returns an iterator over the entries of nodes accepted by pred.
func (t *Tree[K, V]) SelectIter(pred Predicate) *Iterator[K, V] {
	t.obs.RecordTraversal()
	it := &Iterator[K, V]{
		w:       newWalker(t.root, pred),
		version: t.version,
		onAbort: t.abort,
	}
	if t.version != nil {
		it.expected = t.version.Load()
	}
	return it
}

func (t *Tree[K, V]) abort(err error) {
	t.obs.RecordConflict()
	t.log.LogConflict(context.Background(), err)
}

func (t *Tree[K, V]) EntrySeq() iter.Seq2[Entry[K, V], error] {
	return t.SelectEntrySeq(Everything)
}

func (t *Tree[K, V]) KeySeq() iter.Seq2[K, error] {
	return t.SelectKeySeq(Everything)
}

func (t *Tree[K, V]) ValueSeq() iter.Seq2[V, error] {
	return t.SelectValueSeq(Everything)
}

// SelectEntrySeq is the range-over-func form of SelectIter. The walk starts
// when the range loop starts. If the tree changes mid-walk, the sequence
// yields a zero entry with the error and stops.
func (t *Tree[K, V]) SelectEntrySeq(pred Predicate) iter.Seq2[Entry[K, V], error] {
	return project(t, pred, func(e Entry[K, V]) Entry[K, V] { return e })
}

func (t *Tree[K, V]) SelectKeySeq(pred Predicate) iter.Seq2[K, error] {
	return project(t, pred, func(e Entry[K, V]) K { return e.Key })
}

func (t *Tree[K, V]) SelectValueSeq(pred Predicate) iter.Seq2[V, error] {
	return project(t, pred, func(e Entry[K, V]) V { return e.Value })
}

func project[K geom.Key, V comparable, T any](t *Tree[K, V], pred Predicate, f func(Entry[K, V]) T) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		it := t.SelectIter(pred)
		for it.Next() {
			if !yield(f(it.Entry()), nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			var zero T
			yield(zero, err)
		}
	}
}
