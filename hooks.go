package wtcache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking: several are called while
// the cache's map lock is held.
type Hooks interface {
	// GetValueAsync served from memory.
	Hit()
	// GetValueAsync had to go to the backing store.
	Miss()

	// A value fetched on a miss was dropped because another operation
	// cached the key while the fetch was in flight.
	FillDiscarded(key any)

	// A backing store call failed and the error was returned to the caller.
	// op ∈ {"get", "set", "remove", "contains"}
	StoreError(op string, key any, err error)

	// A key left memory. reason ∈ {"evict", "remove"}
	Evicted(reason string)

	// EvictKeyAsync was called for a key that is not cached.
	EvictMiss(key any)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Hit()                          {}
func (NopHooks) Miss()                         {}
func (NopHooks) FillDiscarded(any)             {}
func (NopHooks) StoreError(string, any, error) {}
func (NopHooks) Evicted(string)                {}
func (NopHooks) EvictMiss(any)                 {}
