package wtcache

import "sync"

// EvictionFunc receives a key and the value it held at the moment it left
// memory.
//
// Listeners run synchronously on the goroutine executing the eviction, in
// registration order, after the key has been removed from the map and while
// the map lock is still held. A listener must therefore not call back into
// the same Cache (it would deadlock) and should return quickly. Each eviction
// or removal of a cached key is delivered exactly once to every listener
// registered at that moment; a listener registered or unregistered
// concurrently with an eviction may or may not see it.
type EvictionFunc[K comparable, V any] func(key K, value V)

type listener[K comparable, V any] struct {
	id uint64
	fn EvictionFunc[K, V]
}

// listeners is copy-on-write: notify reads a stable slice.
type listeners[K comparable, V any] struct {
	mu   sync.Mutex
	next uint64
	fns  []listener[K, V]
}

func (l *listeners[K, V]) add(fn EvictionFunc[K, V]) func() {
	l.mu.Lock()
	l.next++
	id := l.next
	fns := make([]listener[K, V], len(l.fns), len(l.fns)+1)
	copy(fns, l.fns)
	l.fns = append(fns, listener[K, V]{id: id, fn: fn})
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { l.remove(id) })
	}
}

func (l *listeners[K, V]) remove(id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fns := make([]listener[K, V], 0, len(l.fns))
	for _, e := range l.fns {
		if e.id != id {
			fns = append(fns, e)
		}
	}
	l.fns = fns
}

func (l *listeners[K, V]) notify(key K, value V) {
	l.mu.Lock()
	fns := l.fns
	l.mu.Unlock()
	for _, e := range fns {
		e.fn(key, value)
	}
}
