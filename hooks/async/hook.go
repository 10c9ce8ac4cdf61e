// Package asynchook moves Hooks delivery off the cache's hot path.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{FillDiscardedEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	c, _ := wtcache.New[string, User](wtcache.Options[string, User]{
//	    Store:    st,
//	    Executor: task.DefaultPool(),
//	    Hooks:    hooks, // or `raw` if you don’t want async
//	})
//
// Events are dropped (and counted) when the queue is full.
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/wtcache"
)

type Hooks struct {
	inner   wtcache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	dropped atomic.Uint64
}

var _ wtcache.Hooks = (*Hooks)(nil)

func New(inner wtcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close delivers queued events and stops the workers. Events raised after
// Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

// Dropped returns how many events were discarded because the queue was full.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	defer func() {
		// send on closed queue after Close
		if recover() != nil {
			h.dropped.Add(1)
		}
	}()
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) Hit()                  { h.try(h.inner.Hit) }
func (h *Hooks) Miss()                 { h.try(h.inner.Miss) }
func (h *Hooks) FillDiscarded(key any) { h.try(func() { h.inner.FillDiscarded(key) }) }
func (h *Hooks) Evicted(reason string) { h.try(func() { h.inner.Evicted(reason) }) }
func (h *Hooks) EvictMiss(key any)     { h.try(func() { h.inner.EvictMiss(key) }) }
func (h *Hooks) StoreError(op string, key any, err error) {
	h.try(func() { h.inner.StoreError(op, key, err) })
}
