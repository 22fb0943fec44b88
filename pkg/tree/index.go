package tree

import (
	"context"
	"iter"

	"regiontree/pkg/geom"
)

// Index is the method set shared by Tree and MutableTree. On a Tree the
// mutators fail with common.ErrUnsupported.
type Index[K geom.Key, V comparable] interface {
	Source[K, V]

	Dims() int
	MaxNodeSize() int
	Size() int
	IsEmpty() bool
	Envelopes(key K) bool

	ContainsKey(key K) bool
	Contains(key K, value V) bool
	ContainsValue(value V) bool
	ContainsValueHinted(value V, hint Predicate) bool

	Keys() []K
	Values() []V
	SelectKeys(pred Predicate) []K
	SelectValues(pred Predicate) []V
	SelectEntries(pred Predicate) []Entry[K, V]
	SearchWithin(q geom.Box) []Entry[K, V]
	SearchRadius(center geom.Point, r float64) []Entry[K, V]

	KeySeq() iter.Seq2[K, error]
	ValueSeq() iter.Seq2[V, error]
	EntrySeq() iter.Seq2[Entry[K, V], error]
	SelectKeySeq(pred Predicate) iter.Seq2[K, error]
	SelectValueSeq(pred Predicate) iter.Seq2[V, error]
	SelectEntrySeq(pred Predicate) iter.Seq2[Entry[K, V], error]
	Iter() *Iterator[K, V]
	SelectIter(pred Predicate) *Iterator[K, V]
	ParallelEach(ctx context.Context, pred Predicate, workers int, fn func(Entry[K, V]) error) error

	Stats() Stats
	CheckIntegrity() error

	Insert(key K, value V) error
	InsertAll(entries []Entry[K, V]) error
	Remove(key K) ([]V, error)
	RemoveEntry(key K, value V) ([]V, error)
	RemoveKeys(keys ...K) ([]V, error)
	RemoveValue(value V) ([]V, error)
	RemoveValueHinted(value V, hint Predicate) ([]V, error)
	Clear() error
}

var (
	_ Index[geom.Point, int] = (*Tree[geom.Point, int])(nil)
	_ Index[geom.Point, int] = (*MutableTree[geom.Point, int])(nil)
	_ Index[geom.Box, string] = (*Tree[geom.Box, string])(nil)
	_ Index[geom.Box, string] = (*MutableTree[geom.Box, string])(nil)
)
