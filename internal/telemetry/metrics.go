// Package telemetry provides observability primitives for the proxy.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors for the proxy.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	ActiveRequests   prometheus.Gauge
	UpstreamDuration *prometheus.HistogramVec
	UpstreamErrors   *prometheus.CounterVec
	CacheHits        *prometheus.CounterVec
	CacheMisses      *prometheus.CounterVec
	CacheWrites      prometheus.Counter
	PendingWrites    prometheus.Gauge
	EntriesPruned    prometheus.Counter
}

// NewMetrics creates and registers all metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llamadash",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:                       "llamadash",
			Name:                            "request_duration_seconds",
			Help:                            "HTTP request duration in seconds.",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 0,
		}, []string{"method", "path"}),

		ActiveRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "llamadash",
			Name:      "active_requests",
			Help:      "Number of currently active requests.",
		}),

		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:                       "llamadash",
			Name:                            "upstream_duration_seconds",
			Help:                            "Origin API call duration in seconds.",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 0,
		}, []string{"host"}),

		UpstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llamadash",
			Name:      "upstream_errors_total",
			Help:      "Total failed origin API calls.",
		}, []string{"host", "status"}),

		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llamadash",
			Name:      "cache_hits_total",
			Help:      "Total response cache hits.",
		}, []string{"host"}),

		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llamadash",
			Name:      "cache_misses_total",
			Help:      "Total response cache misses.",
		}, []string{"host"}),

		CacheWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "llamadash",
			Name:      "cache_writes_total",
			Help:      "Total background cache write-backs.",
		}),

		PendingWrites: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "llamadash",
			Name:      "cache_pending_writes",
			Help:      "Cache write-backs currently in flight.",
		}),

		EntriesPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "llamadash",
			Name:      "cache_entries_pruned_total",
			Help:      "Expired persistent cache entries removed by the janitor.",
		}),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.ActiveRequests,
		m.UpstreamDuration,
		m.UpstreamErrors,
		m.CacheHits,
		m.CacheMisses,
		m.CacheWrites,
		m.PendingWrites,
		m.EntriesPruned,
	)

	return m
}
