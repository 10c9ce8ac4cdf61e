package wtcache

import (
	"context"
	"errors"
	"sync"

	st "github.com/unkn0wn-root/wtcache/store"
	"github.com/unkn0wn-root/wtcache/task"
)

type cache[K comparable, V any] struct {
	store st.Store[K, V]
	exec  task.Executor
	log   Logger
	hooks Hooks

	// mu guards entries. Held for map access only, never across store calls
	// on the get and set paths.
	mu      sync.Mutex
	entries map[K]V

	evicted listeners[K, V]

	closeOnce sync.Once
	closeErr  error
}

func newCache[K comparable, V any](opts Options[K, V]) (*cache[K, V], error) {
	if opts.Store == nil {
		return nil, errors.New("wtcache: store is required")
	}
	if opts.Executor == nil {
		return nil, errors.New("wtcache: executor is required (NewDefault uses the shared pool)")
	}

	c := &cache[K, V]{
		store:   opts.Store,
		exec:    opts.Executor,
		entries: make(map[K]V),
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	return c, nil
}

func (c *cache[K, V]) ContainsKeyAsync(ctx context.Context, key K) *task.Future[bool] {
	return task.Run(ctx, c.exec, func(ctx context.Context) (bool, error) {
		if _, ok := c.lookup(key); ok {
			return true, nil
		}
		// the store check touches no cache state; no lock
		ok, err := c.store.ContainsKey(ctx, key)
		if err != nil {
			c.storeError("contains", key, err)
			return false, err
		}
		return ok, nil
	})
}

func (c *cache[K, V]) ContainsKeyInCacheAsync(ctx context.Context, key K) *task.Future[bool] {
	return task.Run(ctx, c.exec, func(context.Context) (bool, error) {
		_, ok := c.lookup(key)
		return ok, nil
	})
}

func (c *cache[K, V]) GetValueAsync(ctx context.Context, key K) *task.Future[V] {
	return task.Run(ctx, c.exec, func(ctx context.Context) (V, error) {
		if v, ok := c.lookup(key); ok {
			c.hooks.Hit()
			return v, nil
		}
		c.hooks.Miss()

		fetched, err := c.store.GetValue(ctx, key)
		if err != nil {
			c.storeError("get", key, err)
			var zero V
			return zero, err
		}

		c.mu.Lock()
		if v, ok := c.entries[key]; ok {
			// cached while we were fetching; the first value in wins
			c.mu.Unlock()
			c.hooks.FillDiscarded(key)
			c.log.Debug("fetched value discarded (key cached concurrently)", Fields{"key": key})
			return v, nil
		}
		c.entries[key] = fetched
		c.mu.Unlock()
		return fetched, nil
	})
}

func (c *cache[K, V]) SetValueAsync(ctx context.Context, key K, value V) *task.Future[struct{}] {
	return task.Run(ctx, c.exec, func(ctx context.Context) (struct{}, error) {
		// store first: a failed write never reaches memory
		if err := c.store.SetValue(ctx, key, value); err != nil {
			c.storeError("set", key, err)
			return struct{}{}, err
		}
		c.mu.Lock()
		c.entries[key] = value
		c.mu.Unlock()
		return struct{}{}, nil
	})
}

func (c *cache[K, V]) EvictKeyAsync(ctx context.Context, key K) *task.Future[struct{}] {
	return task.Run(ctx, c.exec, func(context.Context) (struct{}, error) {
		c.mu.Lock()
		defer c.mu.Unlock()

		v, ok := c.entries[key]
		if !ok {
			c.hooks.EvictMiss(key)
			return struct{}{}, &KeyNotFoundError{Key: key}
		}
		delete(c.entries, key)
		c.hooks.Evicted("evict")
		c.evicted.notify(key, v)
		return struct{}{}, nil
	})
}

// RemoveKeyAsync holds the lock across the store removal so no operation
// observes the key cached after the store dropped it.
func (c *cache[K, V]) RemoveKeyAsync(ctx context.Context, key K) *task.Future[struct{}] {
	return task.Run(ctx, c.exec, func(ctx context.Context) (struct{}, error) {
		c.mu.Lock()
		defer c.mu.Unlock()

		if err := c.store.RemoveKey(ctx, key); err != nil {
			c.storeError("remove", key, err)
			return struct{}{}, err
		}
		v, ok := c.entries[key]
		if !ok {
			return struct{}{}, nil
		}
		delete(c.entries, key)
		c.hooks.Evicted("remove")
		c.evicted.notify(key, v)
		return struct{}{}, nil
	})
}

func (c *cache[K, V]) ContainsKey(ctx context.Context, key K) (bool, error) {
	return c.ContainsKeyAsync(ctx, key).Wait(ctx)
}

func (c *cache[K, V]) ContainsKeyInCache(ctx context.Context, key K) (bool, error) {
	return c.ContainsKeyInCacheAsync(ctx, key).Wait(ctx)
}

func (c *cache[K, V]) GetValue(ctx context.Context, key K) (V, error) {
	return c.GetValueAsync(ctx, key).Wait(ctx)
}

func (c *cache[K, V]) SetValue(ctx context.Context, key K, value V) error {
	_, err := c.SetValueAsync(ctx, key, value).Wait(ctx)
	return err
}

func (c *cache[K, V]) EvictKey(ctx context.Context, key K) error {
	_, err := c.EvictKeyAsync(ctx, key).Wait(ctx)
	return err
}

func (c *cache[K, V]) RemoveKey(ctx context.Context, key K) error {
	_, err := c.RemoveKeyAsync(ctx, key).Wait(ctx)
	return err
}

func (c *cache[K, V]) OnEvicted(fn EvictionFunc[K, V]) func() {
	return c.evicted.add(fn)
}

func (c *cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *cache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]K, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}

func (c *cache[K, V]) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		if cl, ok := c.store.(st.Closer); ok {
			c.closeErr = cl.Close(ctx)
		}
	})
	return c.closeErr
}

func (c *cache[K, V]) lookup(key K) (V, bool) {
	c.mu.Lock()
	v, ok := c.entries[key]
	c.mu.Unlock()
	return v, ok
}

func (c *cache[K, V]) storeError(op string, key K, err error) {
	c.hooks.StoreError(op, key, err)
	c.log.Debug("store "+op+" failed", Fields{"key": key, "err": err})
}
