// Package tree implements quad-trees (2D) and oct-trees (3D) that map point or
// box keys to values.
//
// A node holds up to a fixed number of entries. When it overflows it splits
// once into 2^D children, and from then on every entry whose key fits inside
// a single child moves down. Box keys that straddle a split plane stay at the
// deepest node that fully contains them.
//
// Tree is built once and never changes. MutableTree supports inserts and
// removals and makes in-progress traversals fail fast when it is modified.
package tree

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"regiontree/pkg/common"
	"regiontree/pkg/geom"
	"regiontree/pkg/logging"
	"regiontree/pkg/zorder"
)

// Source is anything a tree can be bulk-loaded from.
type Source[K geom.Key, V comparable] interface {
	Bounds() geom.Box
	Entries() []Entry[K, V]
}

// Tree is an immutable region tree. All query methods are safe for concurrent
// use. Mutators return an UnsupportedOperationError.
type Tree[K geom.Key, V comparable] struct {
	root        *node[K, V]
	size        int
	maxNodeSize int
	// version is nil for immutable trees.
	version *atomic.Uint64
	log     *logging.Logger
	obs     Observer
	zorder  bool
}

// Build creates an immutable tree over bounds holding entries. It fails if any
// key lies outside bounds.
func Build[K geom.Key, V comparable](bounds geom.Box, maxNodeSize int, entries []Entry[K, V], opts ...Option) (*Tree[K, V], error) {
	t := &Tree[K, V]{}
	if err := t.init(bounds, maxNodeSize, opts); err != nil {
		return nil, err
	}
	start := time.Now()
	err := t.load(entries)
	t.obs.RecordBatchInsert(len(entries), time.Since(start), err)
	t.log.LogBuild(context.Background(), len(entries), maxNodeSize, t.zorder, err)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// From builds an immutable copy of src with a possibly different node size.
// Entries are re-inserted, so the copy's shape follows maxNodeSize.
func From[K geom.Key, V comparable](src Source[K, V], maxNodeSize int, opts ...Option) (*Tree[K, V], error) {
	return Build(src.Bounds(), maxNodeSize, src.Entries(), opts...)
}

func (t *Tree[K, V]) init(bounds geom.Box, maxNodeSize int, opts []Option) error {
	if d := bounds.Dims(); d < 2 || d > geom.MaxDims {
		return &common.DimensionsError{Dims: d, Min: 2, Max: geom.MaxDims}
	}
	if maxNodeSize <= 0 {
		return &common.NodeSizeError{Size: maxNodeSize}
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	name := "quad"
	if bounds.Dims() == 3 {
		name = "oct"
	}
	t.root = newNode[K, V](bounds, maxNodeSize)
	t.maxNodeSize = maxNodeSize
	t.log = o.logger.WithTree(name).WithDimensions(bounds.Dims())
	t.obs = o.observer
	t.zorder = o.zorder
	return nil
}

func (t *Tree[K, V]) checkDims(key K) error {
	if key.Dims() != t.root.region.Dims() {
		return &common.DimensionMismatchError{Expected: t.root.region.Dims(), Actual: key.Dims()}
	}
	return nil
}

func (t *Tree[K, V]) checkKey(key K) error {
	if err := t.checkDims(key); err != nil {
		return err
	}
	if !key.Within(t.root.region) {
		return &common.OutOfBoundsError{Key: key.String(), Bounds: t.root.region.String()}
	}
	return nil
}

func (t *Tree[K, V]) insert(e Entry[K, V]) error {
	if err := t.checkKey(e.Key); err != nil {
		return err
	}
	splits := t.root.insert(e)
	t.size++
	t.touch()
	if splits > 0 {
		t.obs.RecordSplit(splits)
		ctx := context.Background()
		if t.log.Enabled(ctx, slog.LevelDebug) {
			t.log.LogSplit(ctx, e.Key.String(), splits)
		}
	}
	return nil
}

// load inserts entries after checking that every key fits, so a failure
// leaves the tree untouched.
func (t *Tree[K, V]) load(entries []Entry[K, V]) error {
	for _, e := range entries {
		if err := t.checkKey(e.Key); err != nil {
			return fmt.Errorf("load %d entries: %w", len(entries), err)
		}
	}
	if t.zorder {
		buf := zorder.NewBuffer[Entry[K, V]](32)
		for _, e := range entries {
			buf.Put(t.root.region.ZCode(e.Key.Center()), e)
		}
		entries = buf.Drain()
	}
	for _, e := range entries {
		if err := t.insert(e); err != nil {
			return err
		}
	}
	return nil
}

// touch bumps the modification count of a mutable tree.
func (t *Tree[K, V]) touch() {
	if t.version != nil {
		t.version.Add(1)
	}
}

func (t *Tree[K, V]) Bounds() geom.Box { return t.root.region }
func (t *Tree[K, V]) Dims() int        { return t.root.region.Dims() }
func (t *Tree[K, V]) MaxNodeSize() int { return t.maxNodeSize }
func (t *Tree[K, V]) Size() int        { return t.size }
func (t *Tree[K, V]) IsEmpty() bool    { return t.size == 0 }

// Envelopes reports whether key lies inside the tree bounds.
func (t *Tree[K, V]) Envelopes(key K) bool {
	return key.Within(t.root.region)
}

func (t *Tree[K, V]) ContainsKey(key K) bool {
	return t.findEntry(Enclosing(key), func(e Entry[K, V]) bool {
		return e.Key == key
	}, key)
}

func (t *Tree[K, V]) Contains(key K, value V) bool {
	return t.findEntry(Enclosing(key), func(e Entry[K, V]) bool {
		return e.Key == key && e.Value == value
	}, key)
}

func (t *Tree[K, V]) ContainsValue(value V) bool {
	return t.ContainsValueHinted(value, Everything)
}

// ContainsValueHinted looks for value only below nodes whose region satisfies
// hint.
func (t *Tree[K, V]) ContainsValueHinted(value V, hint Predicate) bool {
	found := false
	t.walk(hint, func(e Entry[K, V]) bool {
		found = e.Value == value
		return !found
	})
	return found
}

func (t *Tree[K, V]) findEntry(pred Predicate, match func(Entry[K, V]) bool, key K) bool {
	if !t.Envelopes(key) {
		return false
	}
	found := false
	t.walk(pred, func(e Entry[K, V]) bool {
		found = match(e)
		return !found
	})
	return found
}

// Stats summarizes the tree shape.
type Stats struct {
	Entries     int
	Nodes       int
	Depth       int
	LargestNode int
}

func (t *Tree[K, V]) Stats() Stats {
	s := Stats{Entries: t.size, Depth: t.root.depth()}
	w := newWalker(t.root, Everything)
	for n := w.next(); n != nil; n = w.next() {
		s.Nodes++
		s.LargestNode = max(s.LargestNode, len(n.entries))
	}
	return s
}

// CheckIntegrity validates the node structure and the size counter.
func (t *Tree[K, V]) CheckIntegrity() error {
	seen := map[*node[K, V]]struct{}{t.root: {}}
	if err := t.root.checkIntegrity(seen); err != nil {
		return err
	}
	if n := t.root.valueCount(); n != t.size {
		return fmt.Errorf("size is %d but nodes hold %d entries", t.size, n)
	}
	return nil
}

func (t *Tree[K, V]) Insert(K, V) error {
	return &common.UnsupportedOperationError{Op: "insert"}
}

func (t *Tree[K, V]) InsertAll([]Entry[K, V]) error {
	return &common.UnsupportedOperationError{Op: "insert all"}
}

func (t *Tree[K, V]) Remove(K) ([]V, error) {
	return nil, &common.UnsupportedOperationError{Op: "remove"}
}

func (t *Tree[K, V]) RemoveEntry(K, V) ([]V, error) {
	return nil, &common.UnsupportedOperationError{Op: "remove entry"}
}

func (t *Tree[K, V]) RemoveKeys(...K) ([]V, error) {
	return nil, &common.UnsupportedOperationError{Op: "remove keys"}
}

func (t *Tree[K, V]) RemoveValue(V) ([]V, error) {
	return nil, &common.UnsupportedOperationError{Op: "remove value"}
}

func (t *Tree[K, V]) RemoveValueHinted(V, Predicate) ([]V, error) {
	return nil, &common.UnsupportedOperationError{Op: "remove value"}
}

func (t *Tree[K, V]) Clear() error {
	return &common.UnsupportedOperationError{Op: "clear"}
}
