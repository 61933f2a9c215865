package server

import (
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/eugener/llamadash/internal/telemetry"
)

func newMetricsEnv(t *testing.T) (*testEnv, *telemetry.Metrics) {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(reg)
	env := newTestEnv(t, func(d *Deps) {
		d.Metrics = metrics
		d.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	})
	return env, metrics
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	env, _ := newMetricsEnv(t)

	env.get(t, "/healthz")

	rec := env.get(t, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{"llamadash_requests_total", "llamadash_request_duration_seconds"} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics should contain %s", name)
		}
	}
}

func TestMetricsMiddleware_RoutePatternLabels(t *testing.T) {
	t.Parallel()
	env, m := newMetricsEnv(t)
	env.origin.JSON("/protocol/aave", `{"name":"Aave"}`)

	for range 3 {
		env.get(t, "/defillama/protocol/aave")
	}
	env.get(t, "/defillama/protocol/unknown-slug")
	env.get(t, "/nothing/here")

	if got := promtest.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/defillama/protocol/{slug}", "200")); got != 3 {
		t.Errorf("200s = %v, want 3", got)
	}
	if got := promtest.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/defillama/protocol/{slug}", "404")); got != 1 {
		t.Errorf("404s = %v, want 1", got)
	}
	if got := promtest.ToFloat64(m.RequestsTotal.WithLabelValues("GET", unmatchedRoute, "404")); got != 1 {
		t.Errorf("unmatched = %v, want 1", got)
	}
	if got := promtest.ToFloat64(m.ActiveRequests); got != 0 {
		t.Errorf("active = %v, want 0", got)
	}
}
