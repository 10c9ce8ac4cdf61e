// Package provider defines the byte-level storage abstraction behind
// store.Encoded.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// same []byte that was previously passed to Set for a key (no prepended/appended
// metadata, no re-encoding, no mutation). If a backend transforms values
// internally (e.g. compression), the transform MUST be fully reversed on Get.
//
// A Provider used as a backing store must not drop entries on its own. Backends
// that may refuse a write (admission policies, size limits) report it as an
// error from Set so the cache never caches a value the store does not hold.
package provider

import (
	"context"
	"errors"
)

// ErrRejected is returned by Set when the backend declined to store the value.
var ErrRejected = errors.New("provider: write rejected")

// Provider is a minimal durable byte store.
// Must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value without expiry.
	Set(ctx context.Context, key string, value []byte) error

	// Del removes a key. Deleting a missing key returns nil.
	Del(ctx context.Context, key string) error

	// Has reports whether key is present without fetching the value.
	Has(ctx context.Context, key string) (bool, error)

	// Close releases resources.
	Close(ctx context.Context) error
}
