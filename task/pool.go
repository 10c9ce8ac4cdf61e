package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var ErrPoolClosed = errors.New("task: pool is shut down")

// PoolStats is a point-in-time view of a Pool.
type PoolStats struct {
	Name      string `json:"name"`
	Workers   int    `json:"workers"`
	Active    int64  `json:"active"`
	Completed int64  `json:"completed"`
	Panicked  int64  `json:"panicked"`
	Pending   int    `json:"pending"`
}

// Pool manages a fixed number of goroutine workers fed from a buffered queue.
type Pool struct {
	name    string
	workers int
	queue   chan func()
	wg      sync.WaitGroup

	active    atomic.Int64
	completed atomic.Int64
	panicked  atomic.Int64

	mu     sync.RWMutex
	closed bool
}

var _ Executor = (*Pool)(nil)

// NewPool starts workers goroutines reading from a queue of length queueLen.
func NewPool(name string, workers, queueLen int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueLen < 0 {
		queueLen = 0
	}
	p := &Pool{
		name:    name,
		workers: workers,
		queue:   make(chan func(), queueLen),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for fn := range p.queue {
		p.run(fn)
	}
}

func (p *Pool) run(fn func()) {
	p.active.Add(1)
	defer p.active.Add(-1)
	// a panicking unit of work must not take the worker down with it
	defer func() {
		if r := recover(); r != nil {
			p.panicked.Add(1)
			return
		}
		p.completed.Add(1)
	}()
	fn()
}

// Submit blocks until fn is queued, ctx is done, or the pool is shut down.
func (p *Pool) Submit(ctx context.Context, fn func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.queue <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting work, runs everything already queued and waits
// for the workers to exit. Safe to call multiple times.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}

// Stats returns current counters.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Name:      p.name,
		Workers:   p.workers,
		Active:    p.active.Load(),
		Completed: p.completed.Load(),
		Panicked:  p.panicked.Load(),
		Pending:   len(p.queue),
	}
}
