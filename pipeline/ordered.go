package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// result carries a value or error through a channel.
type result[T any] struct {
	val T
	err error
}

// OrderedParallel applies fn to each value with up to n concurrent workers and
// yields results in input order. Each input gets its own result slot, so a
// slow item holds back later results but never reorders them. The first
// error from fn cancels the remaining work and is returned at its position.
// With n <= 1 items are processed one at a time.
func OrderedParallel[I, O any](p *Pipeline[I], n int, fn func(context.Context, I) (O, error)) *Pipeline[O] {
	if n <= 0 {
		n = 1
	}
	return &Pipeline[O]{
		create: func(ctx context.Context) Iterator[O] {
			source := p.create(ctx)
			workerCtx, cancel := context.WithCancel(ctx)
			g, gctx := errgroup.WithContext(workerCtx)
			g.SetLimit(n)

			slots := make(chan chan result[O], n)

			go func() {
				defer close(slots)
				for {
					val, ok, err := source.Next(gctx)
					if err != nil {
						slot := make(chan result[O], 1)
						slot <- result[O]{err: err}
						select {
						case slots <- slot:
						case <-workerCtx.Done():
						}
						break
					}
					if !ok {
						break
					}
					slot := make(chan result[O], 1)
					select {
					case slots <- slot:
					case <-workerCtx.Done():
						_ = g.Wait()
						return
					}
					g.Go(func() error {
						o, err := fn(gctx, val)
						slot <- result[O]{val: o, err: err}
						return err
					})
				}
				_ = g.Wait()
			}()

			return &orderedIter[O]{
				slots: slots,
				closer: func() error {
					cancel()
					return source.Close()
				},
			}
		},
	}
}

type orderedIter[T any] struct {
	slots  <-chan chan result[T]
	closer func() error
}

func (it *orderedIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	var slot chan result[T]
	select {
	case s, open := <-it.slots:
		if !open {
			// The producer stops early only when the context ended.
			return zero, false, ctx.Err()
		}
		slot = s
	case <-ctx.Done():
		return zero, false, ctx.Err()
	}
	select {
	case r := <-slot:
		if r.err != nil {
			return zero, false, r.err
		}
		return r.val, true, nil
	case <-ctx.Done():
		return zero, false, ctx.Err()
	}
}

func (it *orderedIter[T]) Close() error {
	if it.closer != nil {
		return it.closer()
	}
	return nil
}
