package task

import (
	"context"
	"errors"
	"fmt"
)

// ErrPanic wraps a value recovered from a panicking unit of work.
var ErrPanic = errors.New("task: panic")

// Future is the completion handle of a unit of work. It completes exactly once,
// with either a value or an error.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Run schedules fn on ex and returns its Future.
//
// If ex refuses the work the Future fails with the Submit error. If ctx is
// already done when a worker picks the work up, fn is skipped and the Future
// fails with ctx.Err().
func Run[T any](ctx context.Context, ex Executor, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	err := ex.Submit(ctx, func() {
		if err := ctx.Err(); err != nil {
			var zero T
			f.complete(zero, err)
			return
		}
		defer func() {
			if r := recover(); r != nil {
				var zero T
				f.complete(zero, fmt.Errorf("%w: %v", ErrPanic, r))
			}
		}()
		v, err := fn(ctx)
		f.complete(v, err)
	})
	if err != nil {
		var zero T
		f.complete(zero, err)
	}
	return f
}

// Completed returns a Future that is already resolved.
func Completed[T any](v T, err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	f.complete(v, err)
	return f
}

func (f *Future[T]) complete(v T, err error) {
	f.val, f.err = v, err
	close(f.done)
}

// Done is closed once the Future has completed.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Wait blocks until completion or until ctx is done. Giving up on the wait
// does not cancel the work itself.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result blocks until completion.
func (f *Future[T]) Result() (T, error) {
	<-f.done
	return f.val, f.err
}

// Err blocks until completion and returns the failure, if any.
func (f *Future[T]) Err() error {
	<-f.done
	return f.err
}
