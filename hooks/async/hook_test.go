package asynchook

import (
	"sync"
	"testing"

	"github.com/unkn0wn-root/wtcache"
)

type countHooks struct {
	wtcache.NopHooks
	mu      sync.Mutex
	hits    int
	evicted []string
}

func (c *countHooks) Hit() { c.mu.Lock(); c.hits++; c.mu.Unlock() }
func (c *countHooks) Evicted(r string) {
	c.mu.Lock()
	c.evicted = append(c.evicted, r)
	c.mu.Unlock()
}

func TestDeliversAfterClose(t *testing.T) {
	inner := &countHooks{}
	h := New(inner, 2, 100)
	for i := 0; i < 10; i++ {
		h.Hit()
	}
	h.Evicted("remove")
	h.Close()

	if inner.hits != 10 {
		t.Fatalf("hits=%d want 10", inner.hits)
	}
	if len(inner.evicted) != 1 || inner.evicted[0] != "remove" {
		t.Fatalf("evicted=%v", inner.evicted)
	}
}

func TestDropsWhenFullOrClosed(t *testing.T) {
	block := make(chan struct{})
	inner := &blockingHooks{release: block}
	h := New(inner, 1, 1)

	h.Miss() // picked by the worker, blocks
	inner.waitStarted()
	h.Miss() // fills the queue
	h.Miss() // dropped
	if h.Dropped() != 1 {
		t.Fatalf("Dropped=%d want 1", h.Dropped())
	}
	close(block)
	h.Close()

	h.Miss() // after close
	if h.Dropped() != 2 {
		t.Fatalf("Dropped=%d want 2", h.Dropped())
	}
}

type blockingHooks struct {
	wtcache.NopHooks
	release chan struct{}
	once    sync.Once
	started chan struct{}
	mu      sync.Mutex
}

func (b *blockingHooks) init() {
	b.mu.Lock()
	if b.started == nil {
		b.started = make(chan struct{})
	}
	b.mu.Unlock()
}

func (b *blockingHooks) waitStarted() {
	b.init()
	<-b.started
}

func (b *blockingHooks) Miss() {
	b.init()
	b.once.Do(func() {
		close(b.started)
		<-b.release
	})
}
