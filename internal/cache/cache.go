// Package cache provides the response stores behind the read-through fetcher.
//
// Three backends implement Cache: Memory (in-process, otter), Redis (shared
// across replicas) and SQLite (survives restarts). Staleness is enforced by
// the store itself from the TTL given at write time; callers never compare
// timestamps.
package cache

import (
	"context"
	"time"
)

// Cache is the interface for response caching.
type Cache interface {
	// Get retrieves a fresh cached value by key.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores a value with the given TTL, replacing any previous value.
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)
	// Delete removes a cached value.
	Delete(ctx context.Context, key string)
	// Purge removes all cached values.
	Purge(ctx context.Context)
}

// Pinger is implemented by backends that depend on an external service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Closer is implemented by backends holding connections.
type Closer interface {
	Close() error
}
