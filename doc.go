// Package wtcache implements an unbounded, write-through, in-memory cache in
// front of a key/value backing store.
//
// Reads are served from memory when possible and fall back to the store on a
// miss, caching what the store returned. Writes go to the store first and
// become visible in memory only once the store accepted them. Entries leave
// memory only when asked to: EvictKeyAsync drops the cached copy, RemoveKeyAsync
// deletes from the store as well. Both notify OnEvicted listeners.
//
// Components:
//   - store.Store[K, V]: the backing store (store.Memory, or store.Encoded over
//     a byte provider: Redis, memcached, PostgreSQL, MinIO/S3, BigCache, Ristretto).
//   - task.Executor: runs every operation as its own unit of work and hands back
//     a task.Future.
//   - Hooks / Logger: optional observability.
//
// Concurrency: one mutex guards the map. It is never held while reading from
// or writing to the store on the get and set paths, so a miss may race with a
// concurrent write of the same key. The first value to reach the map wins; a
// fetched value that arrives second is discarded:
//
//	GetValueAsync(k): miss -> store.GetValue(k) ... SetValueAsync(k, v2) caches v2
//	                  -> lock, k already cached -> return v2, drop fetched value
//
// Usage:
//
//	st := store.NewMemory[string, User]()
//	c, _ := wtcache.NewDefault[string, User](st)
//	_ = c.SetValue(ctx, "u:1", u)
//	u, err := c.GetValue(ctx, "u:1")
package wtcache
