// Package task is the execution substrate for cache operations.
//
// Every cache operation is handed to an Executor as an independent unit of
// work and the caller gets a Future back. The package ships three executors:
//
//   - Inline runs work on the submitting goroutine (deterministic, handy in tests).
//   - Pool is a fixed set of workers draining a buffered queue.
//   - Limited starts one goroutine per unit of work, bounded by a weighted semaphore.
//
// DefaultPool returns the process-wide Pool used when no executor is chosen.
package task

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Executor accepts units of work. Submit either schedules fn to run exactly
// once or returns an error and never runs it.
type Executor interface {
	Submit(ctx context.Context, fn func()) error
}

// Inline runs fn on the caller's goroutine before Submit returns.
type Inline struct{}

var _ Executor = Inline{}

func (Inline) Submit(_ context.Context, fn func()) error {
	fn()
	return nil
}

// Limited runs each unit of work on its own goroutine, with at most n in flight.
// Submit blocks while the limit is reached.
type Limited struct {
	sem *semaphore.Weighted
}

var _ Executor = (*Limited)(nil)

func NewLimited(n int64) *Limited {
	if n <= 0 {
		n = int64(runtime.GOMAXPROCS(0))
	}
	return &Limited{sem: semaphore.NewWeighted(n)}
}

func (l *Limited) Submit(ctx context.Context, fn func()) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	go func() {
		defer l.sem.Release(1)
		fn()
	}()
	return nil
}

var (
	defaultOnce sync.Once
	defaultPool *Pool
)

// DefaultPool returns a shared Pool with GOMAXPROCS workers.
// It lives for the whole process and is never shut down.
func DefaultPool() *Pool {
	defaultOnce.Do(func() {
		n := runtime.GOMAXPROCS(0)
		defaultPool = NewPool("default", n, n*100)
	})
	return defaultPool
}
