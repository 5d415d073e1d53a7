package workerpool

import "context"

// Future is the eventual result of a submitted task. It resolves exactly once.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Completed returns a future that is already resolved.
func Completed[T any](v T, err error) *Future[T] {
	f := newFuture[T]()
	f.resolve(v, err)
	return f
}

func (f *Future[T]) resolve(v T, err error) {
	f.val = v
	f.err = err
	close(f.done)
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the result is available or ctx ends. Abandoning a
// future does not cancel the task.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Go runs fn on a new goroutine outside the pool. Use it only to combine
// futures; real work belongs on a Pool.
func Go[T any](fn func() (T, error)) *Future[T] {
	out := newFuture[T]()
	go func() {
		out.resolve(run(context.Background(), func(context.Context) (T, error) { return fn() }))
	}()
	return out
}
