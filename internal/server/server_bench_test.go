package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	// TextHandler(io.Discard) still formats attrs, so allocation counts stay
	// honest while output is suppressed.
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

const benchProtocols = `[{"id":"1","name":"Uniswap","symbol":"UNI","category":"Dexes","chains":["Ethereum","Arbitrum"],"tvl":1000,"change_1d":1,"change_7d":2,"change_1m":3,"slug":"uniswap"},{"id":"2","name":"Aave","symbol":"AAVE","category":"Lending","chains":["Ethereum"],"tvl":2000,"slug":"aave"}]`

// newBenchEnv returns an env whose /protocols document is already cached.
func newBenchEnv(b *testing.B) *testEnv {
	b.Helper()
	env := newTestEnv(b)
	env.origin.JSON("/protocols", benchProtocols)
	if rec := env.get(b, "/defillama/protocols"); rec.Code != http.StatusOK {
		b.Fatalf("warmup status = %d", rec.Code)
	}
	return env
}

func BenchmarkCachedEndpoint(b *testing.B) {
	env := newBenchEnv(b)

	b.ResetTimer()
	for b.Loop() {
		req := httptest.NewRequest(http.MethodGet, "/defillama/protocols?search=uni", nil)
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			b.Fatalf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
		}
	}
}

func BenchmarkCachedEndpointParallel(b *testing.B) {
	env := newBenchEnv(b)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			req := httptest.NewRequest(http.MethodGet, "/defillama/protocols", nil)
			rec := httptest.NewRecorder()
			env.handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				b.Fatalf("status = %d, want 200", rec.Code)
			}
		}
	})
}

// discardResponseWriter captures the status, discards the body and reuses
// its header map, isolating handler allocations from recorder overhead.
type discardResponseWriter struct {
	hdr  http.Header
	code int
}

func (w *discardResponseWriter) Header() http.Header         { return w.hdr }
func (w *discardResponseWriter) Write(b []byte) (int, error) { return len(b), nil }
func (w *discardResponseWriter) WriteHeader(code int)        { w.code = code }

func (w *discardResponseWriter) reset() {
	clear(w.hdr)
	w.code = http.StatusOK
}

func BenchmarkCachedEndpointHandler(b *testing.B) {
	env := newBenchEnv(b)
	w := &discardResponseWriter{hdr: make(http.Header, 8), code: http.StatusOK}

	b.ResetTimer()
	for b.Loop() {
		req, _ := http.NewRequest(http.MethodGet, "/defillama/protocols", nil)
		w.reset()
		env.handler.ServeHTTP(w, req)
		if w.code != http.StatusOK {
			b.Fatalf("status = %d, want 200", w.code)
		}
	}
}

func BenchmarkHealthzHandler(b *testing.B) {
	env := newTestEnv(b)
	w := &discardResponseWriter{hdr: make(http.Header, 4), code: http.StatusOK}

	b.ResetTimer()
	for b.Loop() {
		req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
		w.reset()
		env.handler.ServeHTTP(w, req)
		if w.code != http.StatusOK {
			b.Fatalf("status = %d, want 200", w.code)
		}
	}
}
