package wtcache

import (
	"context"

	st "github.com/unkn0wn-root/wtcache/store"
	"github.com/unkn0wn-root/wtcache/task"
)

// Cache is the write-through cache API.
//
// Every *Async method runs as an independent unit of work on the configured
// executor and reports its outcome through the returned Future. The blocking
// forms submit the same work and wait for it with ctx; giving up on the wait
// does not undo an operation that already started.
type Cache[K comparable, V any] interface {
	// ContainsKeyAsync reports whether key is cached or present in the store.
	// The store is asked only on a cache miss.
	ContainsKeyAsync(ctx context.Context, key K) *task.Future[bool]
	// ContainsKeyInCacheAsync reports whether key is cached. Never asks the store.
	ContainsKeyInCacheAsync(ctx context.Context, key K) *task.Future[bool]
	// GetValueAsync returns the cached value, or loads it from the store and
	// caches it. Store errors (including "not found") fail the Future.
	GetValueAsync(ctx context.Context, key K) *task.Future[V]
	// SetValueAsync writes to the store, then caches value.
	SetValueAsync(ctx context.Context, key K, value V) *task.Future[struct{}]
	// EvictKeyAsync drops key from memory only. Fails with ErrKeyNotFound
	// when key is not cached.
	EvictKeyAsync(ctx context.Context, key K) *task.Future[struct{}]
	// RemoveKeyAsync deletes key from the store and from memory.
	RemoveKeyAsync(ctx context.Context, key K) *task.Future[struct{}]

	ContainsKey(ctx context.Context, key K) (bool, error)
	ContainsKeyInCache(ctx context.Context, key K) (bool, error)
	GetValue(ctx context.Context, key K) (V, error)
	SetValue(ctx context.Context, key K, value V) error
	EvictKey(ctx context.Context, key K) error
	RemoveKey(ctx context.Context, key K) error

	// OnEvicted registers fn to be called whenever a key leaves memory
	// through EvictKeyAsync or RemoveKeyAsync. See EvictionFunc.
	OnEvicted(fn EvictionFunc[K, V]) (unsubscribe func())

	// Len returns the number of cached entries.
	Len() int
	// Keys returns a snapshot of the cached keys in no particular order.
	Keys() []K

	// Close closes the store if it implements store.Closer. The executor is
	// owned by the caller and left running.
	Close(ctx context.Context) error
}

// Options configure a Cache. Store and Executor are required.
type Options[K comparable, V any] struct {
	// Required
	Store    st.Store[K, V]
	Executor task.Executor // NewDefault uses task.DefaultPool()

	Logger Logger // if nil, NopLogger is used
	Hooks  Hooks  // if nil, NopHooks is used
}

func New[K comparable, V any](opts Options[K, V]) (Cache[K, V], error) {
	return newCache[K, V](opts)
}

// NewDefault is the default construction path: a cache over s whose
// operations run on the process-wide task.DefaultPool().
func NewDefault[K comparable, V any](s st.Store[K, V]) (Cache[K, V], error) {
	return New[K, V](Options[K, V]{Store: s, Executor: task.DefaultPool()})
}
