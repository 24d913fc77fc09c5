// Package cache stores rendered artifacts keyed by what produced them.
//
// Rendering is a pure function of the artwork descriptor, so identical
// descriptors (the same blocks, style and canvas) can reuse the SVG and PNG
// bytes of an earlier run. A [Keyer] turns a descriptor hash and output
// options into a key; a [Cache] stores the bytes.
//
// Backends:
//
//   - [NullCache]: caching disabled
//   - [FileCache]: JSON entries under a local directory (CLI default)
//   - [RedisCache]: shared cache for several API instances
//
// [Fetch] wraps a lookup and a compute function and reports hits, misses and
// writes to the registered observability hooks.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/dreamscape/pkg/observability"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Backends accepted by Open.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Open returns the cache for backend. dir is used by the file backend and
// redisURL by the redis backend.
func Open(ctx context.Context, backend, dir, redisURL string) (Cache, error) {
	switch backend {
	case BackendNone, "":
		return NewNullCache(), nil
	case BackendFile:
		fc, err := NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	case BackendRedis:
		return NewRedisCache(ctx, redisURL)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}

// Fetch returns the cached value for key, or computes, stores and returns
// it. hit reports whether the value came from the cache. Cache read and write
// failures are not fatal: the value is computed and returned anyway.
func Fetch(ctx context.Context, c Cache, key, keyType string, ttl time.Duration, compute func() ([]byte, error)) (data []byte, hit bool, err error) {
	hooks := observability.Cache()

	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		hooks.OnCacheHit(ctx, keyType)
		return data, true, nil
	}
	hooks.OnCacheMiss(ctx, keyType)

	data, err = compute()
	if err != nil {
		return nil, false, err
	}
	if err := c.Set(ctx, key, data, ttl); err == nil {
		hooks.OnCacheSet(ctx, keyType, len(data))
	}
	return data, false, nil
}
