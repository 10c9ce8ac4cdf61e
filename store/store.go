// Package store defines the backing store contract consumed by wtcache.
//
// A Store is the source of truth: every write and removal issued through the
// cache lands here, and every cache miss is served from here. Calls are
// synchronous from the cache's point of view; any error returned fails the
// cache operation that issued it, unchanged and without retry.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by the bundled stores from GetValue when the key is
// absent. Third-party stores may use their own signal; the cache only cares
// that GetValue fails instead of returning a placeholder.
var ErrNotFound = errors.New("store: key not found")

// Store is a synchronous key/value store. Implementations must be safe for
// concurrent use.
type Store[K comparable, V any] interface {
	// GetValue returns the stored value. On absence it must return an error
	// (ErrNotFound for the bundled stores) rather than a zero value.
	GetValue(ctx context.Context, key K) (V, error)

	// SetValue durably associates value with key, overwriting any prior value.
	SetValue(ctx context.Context, key K, value V) error

	// RemoveKey deletes key. Removing an absent key is not an error.
	RemoveKey(ctx context.Context, key K) error

	// ContainsKey reports whether key is present, independent of GetValue.
	ContainsKey(ctx context.Context, key K) (bool, error)
}

// Closer is implemented by stores that hold resources. The cache closes its
// store on Close when the store implements it.
type Closer interface {
	Close(ctx context.Context) error
}
