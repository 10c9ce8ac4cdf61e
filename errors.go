package wtcache

import (
	"errors"
	"fmt"
)

// ErrKeyNotFound is matched (errors.Is) by every *KeyNotFoundError.
var ErrKeyNotFound = errors.New("wtcache: key not found in cache")

// KeyNotFoundError is returned by EvictKeyAsync when the key is not cached.
// It is the only error the cache produces itself; backing store errors are
// returned as the store produced them.
type KeyNotFoundError struct {
	Key any
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("wtcache: missing key: %v", e.Key)
}

func (e *KeyNotFoundError) Is(target error) bool { return target == ErrKeyNotFound }
