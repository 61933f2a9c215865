package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/dnscache"

	"github.com/eugener/llamadash/internal/app"
	"github.com/eugener/llamadash/internal/cache"
	"github.com/eugener/llamadash/internal/config"
	"github.com/eugener/llamadash/internal/server"
	"github.com/eugener/llamadash/internal/storage/sqlite"
	"github.com/eugener/llamadash/internal/telemetry"
	"github.com/eugener/llamadash/internal/upstream"
	"github.com/eugener/llamadash/internal/worker"
)

// maxCacheTTL bounds per-entry TTLs in the memory backend.
const maxCacheTTL = time.Hour

func run(configPath string) error {
	// Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	slog.SetDefault(newLogger(cfg.Log))

	slog.Info("starting llamadash", "version", version, "addr", cfg.Server.Addr)

	ctx := context.Background()

	// Tracing
	if cfg.Telemetry.Tracing.Enabled {
		shutdownTracing, err := telemetry.SetupTracing(ctx, "llamadash",
			cfg.Telemetry.Tracing.Endpoint, cfg.Telemetry.Tracing.SampleRate)
		if err != nil {
			return fmt.Errorf("setup tracing: %w", err)
		}
		defer func() {
			tctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(tctx); err != nil {
				slog.Warn("tracing shutdown failed", "error", err)
			}
		}()
	}

	// Metrics
	var (
		metrics        *telemetry.Metrics
		metricsHandler http.Handler
	)
	if cfg.Telemetry.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = telemetry.NewMetrics(reg)
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	// Cache
	var workers []worker.Worker
	c, readyCheck, closeCache, janitor, err := openCache(ctx, cfg.Cache, metrics)
	if err != nil {
		return err
	}
	defer closeCache()
	if c != nil && cfg.Cache.PurgeOnStart {
		c.Purge(ctx)
		slog.Info("cache purged", "backend", cfg.Cache.Backend)
	}
	if janitor != nil {
		workers = append(workers, janitor)
	}

	// Upstream client
	var resolver *dnscache.Resolver
	if cfg.Upstream.DNSCache {
		resolver = &dnscache.Resolver{}
		workers = append(workers, worker.NewDNSRefresher(resolver, cfg.Upstream.DNSRefresh))
	}
	client := upstream.New(upstream.Options{
		HTTPClient:   upstream.NewHTTPClient(resolver, cfg.Upstream.Timeout),
		Cache:        c,
		Metrics:      metrics,
		WriteTimeout: cfg.Cache.WriteTimeout,
	})

	hosts := cfg.Upstream.Hosts
	endpoints := app.NewEndpointService(client, app.Hosts{
		API:         hosts.API,
		Stablecoins: hosts.Stablecoins,
		Yields:      hosts.Yields,
		Bridges:     hosts.Bridges,
		Coins:       hosts.Coins,
	})

	// Create HTTP server
	handler := server.New(server.Deps{
		Endpoints:      endpoints,
		Prefix:         cfg.Server.Prefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		ReadyCheck:     readyCheck,
		Metrics:        metrics,
		MetricsHandler: metricsHandler,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Background workers
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	workerErr := make(chan error, 1)
	go func() {
		if err := worker.NewRunner(workers...).Run(workerCtx); err != nil {
			workerErr <- err
		}
	}()

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	slog.Info("llamadash ready", "addr", cfg.Server.Addr, "cache", cacheLabel(cfg.Cache))

	// Wait for signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig)
	case err := <-errCh:
		return err
	case err := <-workerErr:
		return fmt.Errorf("worker: %w", err)
	}

	// Shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	stopWorkers()
	client.Wait()

	slog.Info("llamadash stopped")
	return nil
}

// openCache builds the configured cache backend. The returned close func is
// always non-nil. janitor is set only for the sqlite backend.
func openCache(ctx context.Context, cfg config.CacheConfig, metrics *telemetry.Metrics) (
	c cache.Cache, ready server.ReadyChecker, closeFn func(), janitor worker.Worker, err error,
) {
	closeFn = func() {}
	if !cfg.Enabled {
		return nil, nil, closeFn, nil, nil
	}

	switch cfg.Backend {
	case config.BackendMemory:
		m, err := cache.NewMemory(cfg.MaxSize, maxCacheTTL)
		if err != nil {
			return nil, nil, closeFn, nil, fmt.Errorf("memory cache: %w", err)
		}
		return m, nil, closeFn, nil, nil

	case config.BackendRedis:
		r, err := cache.NewRedis(ctx, cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.Prefix)
		if err != nil {
			return nil, nil, closeFn, nil, fmt.Errorf("redis cache: %w", err)
		}
		closeFn = func() {
			if err := r.Close(); err != nil {
				slog.Warn("redis close failed", "error", err)
			}
		}
		return r, r.Ping, closeFn, nil, nil

	case config.BackendSQLite:
		store, err := sqlite.New(cfg.SQLite.DSN)
		if err != nil {
			return nil, nil, closeFn, nil, fmt.Errorf("sqlite cache: %w", err)
		}
		closeFn = func() {
			if err := store.Close(); err != nil {
				slog.Warn("sqlite close failed", "error", err)
			}
		}
		janitor = worker.NewCacheJanitor(store, cfg.SQLite.PruneInterval, metrics)
		return cache.NewSQLite(store), store.Ping, closeFn, janitor, nil
	}
	return nil, nil, closeFn, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}

func cacheLabel(cfg config.CacheConfig) string {
	if !cfg.Enabled {
		return "disabled"
	}
	return cfg.Backend
}

// newLogger builds the process logger from the log section.
func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
