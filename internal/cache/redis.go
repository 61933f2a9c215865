package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a cache shared by every replica. Entries expire through the
// server-side EX set at write time.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

// NewRedis connects to the Redis server at redisURL and verifies it answers.
// All keys are namespaced under prefix.
func NewRedis(ctx context.Context, redisURL, password, prefix string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{rdb: rdb, prefix: prefix}, nil
}

// Get retrieves a value; errors other than a miss are logged and treated as a miss.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.LogAttrs(ctx, slog.LevelWarn, "redis cache get failed",
				slog.String("error", err.Error()),
			)
		}
		return nil, false
	}
	return val, true
}

// Set stores a value with the given TTL.
func (r *Redis) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	if err := r.rdb.Set(ctx, r.prefix+key, val, ttl).Err(); err != nil {
		slog.LogAttrs(ctx, slog.LevelDebug, "redis cache set failed",
			slog.String("error", err.Error()),
		)
	}
}

// Delete removes a value.
func (r *Redis) Delete(ctx context.Context, key string) {
	r.rdb.Del(ctx, r.prefix+key) //nolint:errcheck
}

// Purge removes every key under the configured prefix.
func (r *Redis) Purge(ctx context.Context) {
	iter := r.rdb.Scan(ctx, 0, r.prefix+"*", 500).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.LogAttrs(ctx, slog.LevelWarn, "redis cache scan failed",
			slog.String("error", err.Error()),
		)
		return
	}
	if len(keys) > 0 {
		r.rdb.Del(ctx, keys...) //nolint:errcheck
	}
}

// Ping reports whether the Redis server is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// Close shuts down the Redis connection pool.
func (r *Redis) Close() error {
	return r.rdb.Close()
}
