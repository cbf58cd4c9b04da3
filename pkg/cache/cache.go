// Package cache stores rendered frames between runs.
//
// Rendering is deterministic: the same frame file rendered with the same
// parameters always yields the same samples. The pipeline therefore keys
// rendered frames by a hash of the frame source and the render-relevant
// parameters and reuses them across runs and across servers.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a local directory (CLI default)
//   - [RedisCache]: shared cache for several `galvo serve` instances
//   - [MongoCache]: shared cache with a TTL index for expiry
//   - [NullCache]: caching disabled
//
// [Open] picks a backend from a URL.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
//
// Get reports a miss with ok == false and a nil error. A ttl of zero means
// the entry does not expire. Implementations are safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
