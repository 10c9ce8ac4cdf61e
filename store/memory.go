package store

import (
	"context"
	"sync"
)

// Memory keeps values in a process-local map. It is the store of choice for
// tests and for single-process setups where the cache fronts an in-memory
// source of truth.
type Memory[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]V
}

var _ Store[string, int] = (*Memory[string, int])(nil)

func NewMemory[K comparable, V any]() *Memory[K, V] {
	return &Memory[K, V]{m: make(map[K]V)}
}

func (s *Memory[K, V]) GetValue(_ context.Context, key K) (V, error) {
	s.mu.RLock()
	v, ok := s.m[key]
	s.mu.RUnlock()
	if !ok {
		var zero V
		return zero, ErrNotFound
	}
	return v, nil
}

func (s *Memory[K, V]) SetValue(_ context.Context, key K, value V) error {
	s.mu.Lock()
	s.m[key] = value
	s.mu.Unlock()
	return nil
}

func (s *Memory[K, V]) RemoveKey(_ context.Context, key K) error {
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
	return nil
}

func (s *Memory[K, V]) ContainsKey(_ context.Context, key K) (bool, error) {
	s.mu.RLock()
	_, ok := s.m[key]
	s.mu.RUnlock()
	return ok, nil
}

// Len returns the number of stored keys.
func (s *Memory[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
