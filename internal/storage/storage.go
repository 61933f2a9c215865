// Package storage defines persistence interfaces for cached upstream responses.
package storage

import (
	"context"
	"time"
)

// CacheEntry is a persisted response body with its absolute expiry.
type CacheEntry struct {
	Key       string
	Value     []byte
	CreatedAt time.Time
	ExpiresAt time.Time
}

// CacheEntryStore manages cache entry persistence.
type CacheEntryStore interface {
	// GetEntry returns the entry for key if it has not expired at now.
	GetEntry(ctx context.Context, key string, now time.Time) (*CacheEntry, error)
	// PutEntry inserts or fully replaces the entry for e.Key.
	PutEntry(ctx context.Context, e *CacheEntry) error
	DeleteEntry(ctx context.Context, key string) error
	// DeleteExpired removes entries expired at now and reports how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteAll(ctx context.Context) error
}
