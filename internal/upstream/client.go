// Package upstream implements the read-through cache fetcher for the
// DefiLlama origin APIs.
//
// FetchWithCache serves a fresh cache entry when one exists and otherwise
// calls the origin, returning the body immediately and writing it back to
// the cache in the background. Failures are never cached. Concurrent misses
// for the same URL each reach the origin; the last write wins.
package upstream

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	llamadash "github.com/eugener/llamadash/internal"
	"github.com/eugener/llamadash/internal/cache"
	"github.com/eugener/llamadash/internal/telemetry"
)

// maxResponseBody caps origin bodies; the full pool and protocol listings run to tens of MB.
const maxResponseBody = 64 << 20

// Options configures a Client. Zero values select defaults.
type Options struct {
	HTTPClient   *http.Client       // nil = http.Client with a 30s timeout
	Cache        cache.Cache        // nil = no caching
	Metrics      *telemetry.Metrics // nil = no metrics
	WriteTimeout time.Duration      // bound on one background cache write; default 5s
}

// Client fetches origin JSON through a cache.
type Client struct {
	http         *http.Client
	cache        cache.Cache
	metrics      *telemetry.Metrics
	tracer       trace.Tracer
	writeTimeout time.Duration
	now          func() time.Time

	writes sync.WaitGroup
}

// New creates a Client from opts.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	wt := opts.WriteTimeout
	if wt <= 0 {
		wt = 5 * time.Second
	}
	return &Client{
		http:         hc,
		cache:        opts.Cache,
		metrics:      opts.Metrics,
		tracer:       telemetry.Tracer("github.com/eugener/llamadash/internal/upstream"),
		writeTimeout: wt,
		now:          time.Now,
	}
}

// FetchWithCache returns the parsed JSON document at rawURL. A fresh cache
// entry keyed by the exact URL is served without an origin call; otherwise
// the origin is called and a 2xx body is cached for ttl. Non-2xx responses and
// transport failures return *llamadash.UpstreamError and are not cached.
func (c *Client) FetchWithCache(ctx context.Context, rawURL string, ttl time.Duration) (gjson.Result, error) {
	ctx, span := c.tracer.Start(ctx, "upstream.fetch", trace.WithAttributes(
		attribute.String("url.full", rawURL),
		attribute.Int64("cache.ttl_seconds", int64(ttl.Seconds())),
	))
	defer span.End()

	host := hostLabel(rawURL)

	if c.cache != nil {
		if data, ok := c.cache.Get(ctx, rawURL); ok {
			if e, err := decodeEntry(data); err == nil {
				span.SetAttributes(attribute.Bool("cache.hit", true))
				if c.metrics != nil {
					c.metrics.CacheHits.WithLabelValues(host).Inc()
				}
				return gjson.ParseBytes(e.Body), nil
			}
			// Undecodable entries are dropped so a failed refetch cannot leave them behind.
			c.cache.Delete(ctx, rawURL)
		}
		if c.metrics != nil {
			c.metrics.CacheMisses.WithLabelValues(host).Inc()
		}
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	resp, body, err := c.fetch(ctx, rawURL, host)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return gjson.Result{}, err
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if c.cache != nil {
		c.writeBack(ctx, rawURL, newEntry(resp, body, ttl, c.now()), ttl)
	}
	return gjson.ParseBytes(body), nil
}

// fetch issues the origin GET and returns the response with its fully read body.
func (c *Client) fetch(ctx context.Context, rawURL, host string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, c.fail(ctx, host, &llamadash.UpstreamError{URL: rawURL, Reason: err.Error()})
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if c.metrics != nil {
		c.metrics.UpstreamDuration.WithLabelValues(host).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return nil, nil, c.fail(ctx, host, &llamadash.UpstreamError{URL: rawURL, Reason: err.Error()})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, c.fail(ctx, host, &llamadash.UpstreamError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Reason:     http.StatusText(resp.StatusCode),
		})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, nil, c.fail(ctx, host, &llamadash.UpstreamError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Reason:     "read body: " + err.Error(),
		})
	}
	if !gjson.ValidBytes(body) {
		return nil, nil, c.fail(ctx, host, &llamadash.UpstreamError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Reason:     "invalid JSON body",
		})
	}
	return resp, body, nil
}

func (c *Client) fail(ctx context.Context, host string, ue *llamadash.UpstreamError) error {
	if c.metrics != nil {
		c.metrics.UpstreamErrors.WithLabelValues(host, strconv.Itoa(ue.StatusCode)).Inc()
	}
	slog.LogAttrs(ctx, slog.LevelWarn, "upstream request failed",
		slog.String("url", ue.URL),
		slog.Int("status", ue.StatusCode),
		slog.String("reason", ue.Reason),
		slog.String("request_id", llamadash.RequestIDFromContext(ctx)),
	)
	return ue
}

// writeBack stores e in the background. The caller's response never waits on
// it and any failure is dropped.
func (c *Client) writeBack(ctx context.Context, key string, e *entry, ttl time.Duration) {
	data, err := e.encode()
	if err != nil {
		return
	}
	// Detach from the request so the write survives the response being sent.
	wctx := context.WithoutCancel(ctx)

	c.writes.Add(1)
	if c.metrics != nil {
		c.metrics.PendingWrites.Inc()
	}
	go func() {
		defer c.writes.Done()
		defer func() {
			if rec := recover(); rec != nil {
				slog.LogAttrs(wctx, slog.LevelDebug, "cache write panicked",
					slog.Any("error", rec),
					slog.String("key", key),
				)
			}
			if c.metrics != nil {
				c.metrics.PendingWrites.Dec()
				c.metrics.CacheWrites.Inc()
			}
		}()
		ctx, cancel := context.WithTimeout(wctx, c.writeTimeout)
		defer cancel()
		c.cache.Set(ctx, key, data, ttl)
	}()
}

// Wait blocks until all in-flight background cache writes finish.
func (c *Client) Wait() {
	c.writes.Wait()
}

// hostLabel returns the URL host for bounded-cardinality metric labels.
func hostLabel(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}
