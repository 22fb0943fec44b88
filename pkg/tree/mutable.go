package tree

import (
	"context"
	"sync/atomic"
	"time"

	"regiontree/pkg/geom"
)

// MutableTree is a region tree that supports inserts and removals.
//
// It is not safe for concurrent mutation. Every structural change bumps a
// modification count, and any traversal started before the change stops with
// a ConcurrentModificationError on its next step.
type MutableTree[K geom.Key, V comparable] struct {
	Tree[K, V]
	modCount atomic.Uint64
}

// NewMutable creates an empty tree over bounds. bounds must be 2D or 3D and
// maxNodeSize positive.
func NewMutable[K geom.Key, V comparable](bounds geom.Box, maxNodeSize int, opts ...Option) (*MutableTree[K, V], error) {
	t := &MutableTree[K, V]{}
	if err := t.Tree.init(bounds, maxNodeSize, opts); err != nil {
		return nil, err
	}
	t.version = &t.modCount
	return t, nil
}

// NewMutableFrom creates a mutable copy of src by re-inserting its entries.
func NewMutableFrom[K geom.Key, V comparable](src Source[K, V], maxNodeSize int, opts ...Option) (*MutableTree[K, V], error) {
	t, err := NewMutable[K, V](src.Bounds(), maxNodeSize, opts...)
	if err != nil {
		return nil, err
	}
	entries := src.Entries()
	start := time.Now()
	err = t.load(entries)
	t.obs.RecordBatchInsert(len(entries), time.Since(start), err)
	t.log.LogBuild(context.Background(), len(entries), maxNodeSize, t.zorder, err)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Insert adds the association key→value. Duplicate keys and duplicate pairs
// are kept as separate entries.
func (t *MutableTree[K, V]) Insert(key K, value V) error {
	start := time.Now()
	err := t.insert(NewEntry(key, value))
	t.obs.RecordInsert(time.Since(start), err)
	if err != nil {
		t.log.LogInsert(context.Background(), key.String(), t.size, err)
	}
	return err
}

// InsertAll adds every entry, or none of them if any key is out of bounds.
func (t *MutableTree[K, V]) InsertAll(entries []Entry[K, V]) error {
	start := time.Now()
	err := t.load(entries)
	t.obs.RecordBatchInsert(len(entries), time.Since(start), err)
	return err
}

// Remove deletes every entry stored under key and returns their values.
func (t *MutableTree[K, V]) Remove(key K) ([]V, error) {
	if err := t.checkDims(key); err != nil {
		return nil, err
	}
	if !t.Envelopes(key) {
		return nil, nil
	}
	removed := t.root.removeWhere(func(e Entry[K, V]) bool {
		return e.Key == key
	}, Enclosing(key), nil)
	t.afterRemove("remove", removed)
	return removed, nil
}

// RemoveEntry deletes every entry equal to key→value.
func (t *MutableTree[K, V]) RemoveEntry(key K, value V) ([]V, error) {
	if err := t.checkDims(key); err != nil {
		return nil, err
	}
	if !t.Envelopes(key) {
		return nil, nil
	}
	removed := t.root.removeWhere(func(e Entry[K, V]) bool {
		return e.Key == key && e.Value == value
	}, Enclosing(key), nil)
	t.afterRemove("remove entry", removed)
	return removed, nil
}

// RemoveKeys removes every entry stored under any of keys.
func (t *MutableTree[K, V]) RemoveKeys(keys ...K) ([]V, error) {
	var all []V
	for _, k := range keys {
		removed, err := t.Remove(k)
		if err != nil {
			return all, err
		}
		all = append(all, removed...)
	}
	return all, nil
}

// RemoveValue deletes every entry holding value, wherever it is.
func (t *MutableTree[K, V]) RemoveValue(value V) ([]V, error) {
	return t.RemoveValueHinted(value, Everything)
}

// RemoveValueHinted deletes entries holding value, searching only below
// nodes whose region satisfies hint. The root is always searched.
func (t *MutableTree[K, V]) RemoveValueHinted(value V, hint Predicate) ([]V, error) {
	if hint == nil {
		hint = Everything
	}
	removed := t.root.removeWhere(func(e Entry[K, V]) bool {
		return e.Value == value
	}, hint, nil)
	t.afterRemove("remove value", removed)
	return removed, nil
}

// Clear drops every node and entry. The bounds and node size stay.
func (t *MutableTree[K, V]) Clear() error {
	dropped := t.size
	t.root = newNode[K, V](t.root.region, t.maxNodeSize)
	t.size = 0
	t.touch()
	t.obs.RecordClear(dropped)
	t.log.LogClear(context.Background(), dropped)
	return nil
}

func (t *MutableTree[K, V]) afterRemove(op string, removed []V) {
	if n := len(removed); n > 0 {
		t.size -= n
		t.touch()
	}
	t.obs.RecordRemove(len(removed))
	t.log.LogRemove(context.Background(), op, len(removed), t.size)
}
