package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/eugener/llamadash/internal/app"
	"github.com/eugener/llamadash/internal/llama"
	"github.com/eugener/llamadash/internal/testutil"
	"github.com/eugener/llamadash/internal/upstream"
)

// testEnv is a handler wired to a fake origin through a real upstream client.
type testEnv struct {
	handler http.Handler
	origin  *testutil.FakeOrigin
	cache   *testutil.FakeCache
	client  *upstream.Client
}

func newTestEnv(t testing.TB, mutate ...func(*Deps)) *testEnv {
	t.Helper()
	origin := testutil.NewFakeOrigin(t)
	fc := testutil.NewFakeCache()
	client := upstream.New(upstream.Options{HTTPClient: origin.Client(), Cache: fc})
	hosts := app.Hosts{API: origin.URL, Stablecoins: origin.URL, Yields: origin.URL, Bridges: origin.URL, Coins: origin.URL}

	deps := Deps{
		Endpoints:      app.NewEndpointService(client, hosts),
		AllowedOrigins: []string{"https://pro.openbb.co", "http://localhost:1420"},
	}
	for _, m := range mutate {
		m(&deps)
	}
	return &testEnv{handler: New(deps), origin: origin, cache: fc, client: client}
}

func (e *testEnv) get(t testing.TB, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	e.client.Wait()
	return rec
}

// requestPath fills an endpoint's path parameters with their defaults.
func requestPath(e *app.Endpoint) string {
	p := e.Path
	for _, prm := range e.Params {
		p = strings.ReplaceAll(p, "{"+prm.Name+"}", prm.Default)
	}
	return DefaultPrefix + p
}

func TestProtocols_SearchEndToEnd(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.origin.JSON("/protocols", `[
		{"name":"Uniswap","symbol":"UNI","category":"Dexes","chains":["Ethereum"],"tvl":1000,"change_1d":1,"change_7d":2,"change_1m":3,"slug":"uniswap"},
		{"name":"Aave","symbol":"AAVE","category":"Lending","chains":["Ethereum"],"tvl":5,"slug":"aave"}
	]`)

	rec := env.get(t, "/defillama/protocols?search=uni")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	got := gjson.Parse(rec.Body.String())
	if n := len(got.Array()); n != 1 {
		t.Fatalf("records = %d, want 1: %s", n, rec.Body.String())
	}
	u := got.Get("0")
	if u.Get("chains").String() != "Ethereum" || u.Get("tvl").Float() != 1000 || u.Get("change_1m").Float() != 3 || u.Get("slug").String() != "uniswap" {
		t.Errorf("record = %s", u.Raw)
	}

	// Empty search is the unfiltered listing and reuses the cached document.
	rec = env.get(t, "/defillama/protocols?search=")
	if n := len(gjson.Parse(rec.Body.String()).Array()); n != 2 {
		t.Errorf("unfiltered records = %d, want 2", n)
	}
	rec = env.get(t, "/defillama/protocols?search=zzz")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("no match body = %s, want []", rec.Body.String())
	}
	if n := env.origin.Calls("/protocols"); n != 1 {
		t.Errorf("origin calls = %d, want 1", n)
	}
}

func TestEndpoints_UpstreamFailure(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	for i := range app.Endpoints {
		e := &app.Endpoints[i]
		t.Run(e.Path, func(t *testing.T) {
			rec := env.get(t, requestPath(e))
			if rec.Code != e.ErrorStatus() {
				t.Errorf("status = %d, want %d", rec.Code, e.ErrorStatus())
			}
			if msg := gjson.Get(rec.Body.String(), "error").String(); msg != e.Message {
				t.Errorf("error = %q, want %q", msg, e.Message)
			}
		})
	}
	if sets := env.cache.Sets(); len(sets) != 0 {
		t.Errorf("failed fetches were cached: %v", sets)
	}
}

func TestEndpoints_AllServe(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	docs := map[string]string{
		"/protocols":                      `[]`,
		"/protocol/aave":                  `{"name":"Aave","tvl":[]}`,
		"/v2/chains":                      `[]`,
		"/v2/historicalChainTvl/Ethereum": `[]`,
		"/v2/historicalChainTvl":          `[]`,
		"/api/categories":                 `[]`,
		"/stablecoins?includePrices=true": `{"peggedAssets":[]}`,
		"/stablecoin/1":                   `{"chainBalances":[]}`,
		"/stablecoinchains":               `[]`,
		"/stablecoincharts/all":           `[]`,
		"/pools":                          `{"status":"success","data":[]}`,
		"/overview/dexs":                  `{"protocols":[]}`,
		"/overview/dexs/Ethereum":         `{"protocols":[]}`,
		"/summary/dexs/uniswap":           `{"name":"uniswap"}`,
		"/overview/fees":                  `{"protocols":[]}`,
		"/overview/fees/Ethereum":         `{"protocols":[]}`,
		"/summary/fees/uniswap":           `{"name":"uniswap"}`,
		"/bridges?includeChains=true":     `{"bridges":[]}`,
		"/bridge/1":                       `{"id":1}`,
		"/overview/options":               `{"protocols":[]}`,
		"/overview/options/Ethereum":      `{"protocols":[]}`,
		"/summary/options/lyra":           `{"name":"lyra"}`,
		"/overview/open-interest":         `{"protocols":[],"totalDataChart":[]}`,
	}
	for path, body := range docs {
		env.origin.JSON(path, body)
	}
	env.origin.JSON("/chart/"+yieldPoolDefault(t), `{"status":"success","data":[]}`)
	env.origin.JSON("/prices/current/coingecko:ethereum,coingecko:bitcoin", `{"coins":{}}`)
	env.origin.JSON("/prices/historical/1704067200/coingecko:ethereum,coingecko:bitcoin", `{"coins":{}}`)

	for i := range app.Endpoints {
		e := &app.Endpoints[i]
		t.Run(e.Path, func(t *testing.T) {
			rec := env.get(t, requestPath(e))
			if rec.Code != http.StatusOK {
				t.Errorf("status = %d; body = %s", rec.Code, rec.Body.String())
			}
			if !gjson.Valid(rec.Body.String()) {
				t.Errorf("invalid JSON body: %s", rec.Body.String())
			}
		})
	}
}

func yieldPoolDefault(t *testing.T) string {
	t.Helper()
	for _, e := range app.Endpoints {
		if e.Path == "/yields/chart/{pool}" {
			return e.Params[0].Default
		}
	}
	t.Fatal("yield chart endpoint missing")
	return ""
}

func TestCacheHitSuppressesRefetch(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.origin.JSON("/v2/chains", `[{"name":"Ethereum","tvl":10,"tokenSymbol":"ETH","chainId":1}]`)

	for range 3 {
		if rec := env.get(t, "/defillama/chains"); rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	}
	// Same origin URL, different endpoint and shape.
	rec := env.get(t, "/defillama/charts/chains")
	if gjson.Get(rec.Body.String(), "0.value").Float() != 10 {
		t.Errorf("chart = %s", rec.Body.String())
	}
	if n := env.origin.Calls("/v2/chains"); n != 1 {
		t.Errorf("origin calls = %d, want 1", n)
	}
}

func TestNotFoundRoutes(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	for _, path := range []string{"/defillama/nope", "/elsewhere"} {
		rec := env.get(t, path)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", path, rec.Code)
		}
		if gjson.Get(rec.Body.String(), "error").String() != "not found" {
			t.Errorf("%s: body = %s", path, rec.Body.String())
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/defillama/protocols", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed || !gjson.Valid(rec.Body.String()) {
		t.Errorf("status = %d; body = %s", rec.Code, rec.Body.String())
	}
}

func TestCustomPrefix(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, func(d *Deps) { d.Prefix = "/" })
	env.origin.JSON("/api/categories", `[{"name":"Dexes","tvl":1}]`)

	if rec := env.get(t, "/categories"); rec.Code != http.StatusOK {
		t.Errorf("root mount: status = %d", rec.Code)
	}
	if rec := env.get(t, "/defillama/categories"); rec.Code != http.StatusNotFound {
		t.Errorf("default prefix should not be mounted: status = %d", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantAllow  string
	}{
		{"allowed origin", http.MethodGet, "https://pro.openbb.co", http.StatusOK, "https://pro.openbb.co"},
		{"other origin", http.MethodGet, "https://evil.example", http.StatusOK, ""},
		{"preflight", http.MethodOptions, "http://localhost:1420", http.StatusNoContent, "http://localhost:1420"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(tt.method, "/healthz", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.method == http.MethodOptions {
				req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			}
			rec := httptest.NewRecorder()
			env.handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantAllow)
			}
			if tt.wantAllow != "" && rec.Header().Get("Access-Control-Allow-Headers") != "Content-Type, Authorization" {
				t.Errorf("Allow-Headers = %q", rec.Header().Get("Access-Control-Allow-Headers"))
			}
		})
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	if rec := env.get(t, "/healthz"); rec.Code != http.StatusOK {
		t.Errorf("healthz = %d", rec.Code)
	}
	if rec := env.get(t, "/readyz"); rec.Code != http.StatusOK {
		t.Errorf("readyz = %d", rec.Code)
	}

	down := newTestEnv(t, func(d *Deps) {
		d.ReadyCheck = func(context.Context) error { return errors.New("redis down") }
	})
	rec := down.get(t, "/readyz")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz = %d, want 503", rec.Code)
	}
	if gjson.Get(rec.Body.String(), "error").String() != "redis down" {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.get(t, "/healthz")
	if id := rec.Header().Get("X-Request-Id"); len(id) != 36 {
		t.Errorf("generated request id = %q", id)
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if id := rec.Header().Get("X-Request-Id"); id != "abc-123" {
		t.Errorf("propagated request id = %q", id)
	}
}

func TestRecovery(t *testing.T) {
	t.Parallel()
	boom := []app.Endpoint{{
		Path: "/boom", Host: app.HostAPI, Upstream: "/boom", Message: "never",
		Transform: func(gjson.Result, llama.Query) (any, error) { panic("boom") },
		Widget:    app.Widget{ID: "boom", Name: "Boom"},
	}}
	env := newTestEnv(t, func(d *Deps) { d.Table = boom })
	env.origin.JSON("/boom", `{}`)

	rec := env.get(t, "/defillama/boom")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if gjson.Get(rec.Body.String(), "error").String() != "internal server error" {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestPathParamsPassedVerbatim(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.origin.JSON("/prices/current/ethereum:0xdAC17F958D2ee523a2206206994597C13D831ec7,coingecko:ethereum",
		`{"coins":{"coingecko:ethereum":{"price":3000}}}`)

	rec := env.get(t, "/defillama/prices/current/ethereum:0xdAC17F958D2ee523a2206206994597C13D831ec7,coingecko:ethereum")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body = %s", rec.Code, rec.Body.String())
	}
	if gjson.Get(rec.Body.String(), `coins.coingecko:ethereum.price`).Float() != 3000 {
		t.Errorf("body = %s", rec.Body.String())
	}
}
