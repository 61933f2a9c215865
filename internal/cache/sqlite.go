package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	llamadash "github.com/eugener/llamadash/internal"
	"github.com/eugener/llamadash/internal/storage"
)

// SQLite adapts a persistent storage.CacheEntryStore to the Cache interface.
// Expired rows are invisible to Get; the cache janitor worker deletes them.
type SQLite struct {
	store storage.CacheEntryStore
	now   func() time.Time
}

// NewSQLite wraps store.
func NewSQLite(store storage.CacheEntryStore) *SQLite {
	return &SQLite{store: store, now: time.Now}
}

// Get retrieves an unexpired value. Storage errors are logged and reported as a miss.
func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool) {
	e, err := s.store.GetEntry(ctx, key, s.now())
	if err != nil {
		if !errors.Is(err, llamadash.ErrNotFound) {
			slog.LogAttrs(ctx, slog.LevelWarn, "sqlite cache get failed",
				slog.String("error", err.Error()),
			)
		}
		return nil, false
	}
	return e.Value, true
}

// Set stores a value with per-entry TTL.
func (s *SQLite) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	now := s.now()
	err := s.store.PutEntry(ctx, &storage.CacheEntry{
		Key:       key,
		Value:     val,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	})
	if err != nil {
		slog.LogAttrs(ctx, slog.LevelDebug, "sqlite cache set failed",
			slog.String("error", err.Error()),
		)
	}
}

// Delete removes a value.
func (s *SQLite) Delete(ctx context.Context, key string) {
	s.store.DeleteEntry(ctx, key) //nolint:errcheck
}

// Purge removes all values.
func (s *SQLite) Purge(ctx context.Context) {
	s.store.DeleteAll(ctx) //nolint:errcheck
}
