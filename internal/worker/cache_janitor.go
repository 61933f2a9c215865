package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/eugener/llamadash/internal/telemetry"
)

// Pruner deletes cache entries whose lifetime has lapsed.
type Pruner interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// CacheJanitor periodically removes expired rows from a persistent cache.
// Reads already skip expired rows; pruning only reclaims space.
type CacheJanitor struct {
	store    Pruner
	interval time.Duration
	metrics  *telemetry.Metrics // nil = no metrics
	now      func() time.Time
}

// NewCacheJanitor creates a janitor pruning store every interval.
func NewCacheJanitor(store Pruner, interval time.Duration, metrics *telemetry.Metrics) *CacheJanitor {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &CacheJanitor{store: store, interval: interval, metrics: metrics, now: time.Now}
}

// Name returns the worker identifier.
func (j *CacheJanitor) Name() string { return "cache_janitor" }

// Run prunes on every tick until ctx is cancelled.
func (j *CacheJanitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			j.Prune(ctx)
		}
	}
}

// Prune deletes expired entries once and returns how many were removed.
// Errors are logged; the next tick retries.
func (j *CacheJanitor) Prune(ctx context.Context) int64 {
	n, err := j.store.DeleteExpired(ctx, j.now())
	if err != nil {
		if ctx.Err() == nil {
			slog.LogAttrs(ctx, slog.LevelError, "cache prune failed", slog.String("error", err.Error()))
		}
		return 0
	}
	if n > 0 {
		if j.metrics != nil {
			j.metrics.EntriesPruned.Add(float64(n))
		}
		slog.LogAttrs(ctx, slog.LevelDebug, "cache pruned", slog.Int64("entries", n))
	}
	return n
}
