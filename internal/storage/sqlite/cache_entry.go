package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	llamadash "github.com/eugener/llamadash/internal"
	"github.com/eugener/llamadash/internal/storage"
)

// GetEntry retrieves an unexpired cache entry by key.
func (s *Store) GetEntry(ctx context.Context, key string, now time.Time) (*storage.CacheEntry, error) {
	row := s.read.QueryRowContext(ctx,
		`SELECT key, value, created_at, expires_at
		 FROM cache_entries WHERE key=? AND expires_at>?`,
		key, now.UnixMilli(),
	)
	var (
		e                  storage.CacheEntry
		created, expiresAt int64
	)
	if err := row.Scan(&e.Key, &e.Value, &created, &expiresAt); err != nil {
		return nil, notFoundErr(err)
	}
	e.CreatedAt = time.UnixMilli(created).UTC()
	e.ExpiresAt = time.UnixMilli(expiresAt).UTC()
	return &e, nil
}

// PutEntry inserts or replaces the entry for e.Key.
func (s *Store) PutEntry(ctx context.Context, e *storage.CacheEntry) error {
	_, err := s.write.ExecContext(ctx,
		`INSERT INTO cache_entries (key, value, created_at, expires_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   value=excluded.value, created_at=excluded.created_at, expires_at=excluded.expires_at`,
		e.Key, e.Value, e.CreatedAt.UnixMilli(), e.ExpiresAt.UnixMilli(),
	)
	return err
}

// DeleteEntry removes the entry for key. Deleting a missing key is not an error.
func (s *Store) DeleteEntry(ctx context.Context, key string) error {
	_, err := s.write.ExecContext(ctx, `DELETE FROM cache_entries WHERE key=?`, key)
	return err
}

// DeleteExpired removes every entry whose expiry is at or before now.
func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.write.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE expires_at<=?`, now.UnixMilli())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteAll empties the table.
func (s *Store) DeleteAll(ctx context.Context) error {
	_, err := s.write.ExecContext(ctx, `DELETE FROM cache_entries`)
	return err
}

// notFoundErr translates sql.ErrNoRows to llamadash.ErrNotFound.
func notFoundErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return llamadash.ErrNotFound
	}
	return err
}
