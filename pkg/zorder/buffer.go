package zorder

import (
	"sync"

	"github.com/google/btree"
)

type item[T any] struct {
	code uint64
	seq  uint64
	val  T
}

func less[T any](a, b item[T]) bool {
	if a.code != b.code {
		return a.code < b.code
	}
	return a.seq < b.seq
}

// Buffer keeps values ordered by Morton code. Values with equal codes come
// back in insertion order.
type Buffer[T any] struct {
	tree *btree.BTreeG[item[T]]
	lock sync.RWMutex
	seq  uint64
}

func NewBuffer[T any](degree int) *Buffer[T] {
	return &Buffer[T]{
		tree: btree.NewG[item[T]](degree, less[T]),
	}
}

func (b *Buffer[T]) Put(code uint64, val T) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.tree.ReplaceOrInsert(item[T]{code: code, seq: b.seq, val: val})
	b.seq++
}

func (b *Buffer[T]) Len() int {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.tree.Len()
}

// Ascend calls fn for each value in code order until fn returns false.
func (b *Buffer[T]) Ascend(fn func(code uint64, val T) bool) {
	b.lock.RLock()
	defer b.lock.RUnlock()

	b.tree.Ascend(func(it item[T]) bool {
		return fn(it.code, it.val)
	})
}

// Drain returns every value in code order and empties the buffer.
func (b *Buffer[T]) Drain() []T {
	b.lock.Lock()
	defer b.lock.Unlock()

	out := make([]T, 0, b.tree.Len())
	b.tree.Ascend(func(it item[T]) bool {
		out = append(out, it.val)
		return true
	})
	b.tree.Clear(false)
	return out
}
