package tree

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParallelEach calls fn for every entry below nodes accepted by pred, using up
// to workers goroutines. fn must be safe for concurrent use. The first error
// from fn, from ctx, or from a concurrent modification stops the walk and is
// returned.
func (t *Tree[K, V]) ParallelEach(ctx context.Context, pred Predicate, workers int, fn func(Entry[K, V]) error) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	it := t.SelectIter(pred)

	// Consume the top of the tree here until enough subtrees are pending to
	// keep every worker busy.
	for it.w.pending() < workers && it.Next() {
		if err := fn(it.Entry()); err != nil {
			return err
		}
	}
	if err := it.Err(); err != nil {
		return err
	}

	parts := []*Iterator[K, V]{it}
	for sub := it.Split(); sub != nil; sub = it.Split() {
		parts = append(parts, sub)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, part := range parts {
		g.Go(func() error {
			for part.Next() {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := fn(part.Entry()); err != nil {
					return err
				}
			}
			return part.Err()
		})
	}
	return g.Wait()
}
