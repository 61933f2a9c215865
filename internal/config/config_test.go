package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.yaml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	yaml := `
server:
  addr: ":9090"
  prefix: /llama
  read_timeout: 10s
upstream:
  hosts:
    api: http://localhost:4000
  timeout: 5s
cache:
  backend: sqlite
  purge_on_start: true
  sqlite:
    dsn: ":memory:"
    prune_interval: 1m
cors:
  allowed_origins: [https://example.com]
log:
  level: debug
  format: text
`
	cfg, err := Load(writeConfig(t, yaml))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr = %q, want %q", cfg.Server.Addr, ":9090")
	}
	if cfg.Server.Prefix != "/llama" {
		t.Errorf("prefix = %q, want %q", cfg.Server.Prefix, "/llama")
	}
	if cfg.Upstream.Hosts.API != "http://localhost:4000" {
		t.Errorf("api host = %q", cfg.Upstream.Hosts.API)
	}
	// Unset sibling keys keep their defaults.
	if cfg.Upstream.Hosts.Coins != "https://coins.llama.fi" {
		t.Errorf("coins host = %q, want default", cfg.Upstream.Hosts.Coins)
	}
	if cfg.Upstream.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", cfg.Upstream.Timeout)
	}
	if cfg.Cache.Backend != BackendSQLite || cfg.Cache.SQLite.DSN != ":memory:" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if !cfg.Cache.PurgeOnStart {
		t.Error("purge_on_start not loaded")
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "https://example.com" {
		t.Errorf("origins = %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("log format = %q, want text", cfg.Log.Format)
	}
}

func TestExpandEnv(t *testing.T) {
	// Cannot use t.Parallel() with t.Setenv
	t.Setenv("TEST_REDIS_PASSWORD", "s3cret")

	yaml := `
cache:
  backend: redis
  redis:
    url: redis://localhost:6379/0
    password: ${TEST_REDIS_PASSWORD}
`
	cfg, err := Load(writeConfig(t, yaml))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cache.Redis.Password != "s3cret" {
		t.Errorf("password = %q, want %q", cfg.Cache.Redis.Password, "s3cret")
	}

	if got := string(expandEnv([]byte("x: ${LLAMADASH_UNSET_VAR}"))); got != "x: ${LLAMADASH_UNSET_VAR}" {
		t.Errorf("unset var should be left as-is, got %q", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, `{}`))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("default addr = %q, want %q", cfg.Server.Addr, ":8080")
	}
	if cfg.Server.Prefix != "/defillama" {
		t.Errorf("default prefix = %q", cfg.Server.Prefix)
	}
	if !cfg.Cache.Enabled || cfg.Cache.Backend != BackendMemory {
		t.Errorf("default cache = %+v", cfg.Cache)
	}
	if cfg.Upstream.Hosts.API != "https://api.llama.fi" {
		t.Errorf("default api host = %q", cfg.Upstream.Hosts.API)
	}
	if cfg.Cache.PurgeOnStart {
		t.Error("purge_on_start should default to false")
	}
	if len(cfg.CORS.AllowedOrigins) != 4 {
		t.Errorf("default origins = %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "memcached" }, "unknown cache backend"},
		{"redis without url", func(c *Config) { c.Cache.Backend = BackendRedis }, "cache.redis.url"},
		{"sqlite without dsn", func(c *Config) { c.Cache.Backend = BackendSQLite; c.Cache.SQLite.DSN = "" }, "cache.sqlite.dsn"},
		{"disabled cache skips backend", func(c *Config) { c.Cache.Enabled = false; c.Cache.Backend = "bogus" }, ""},
		{"zero timeout", func(c *Config) { c.Upstream.Timeout = 0 }, "upstream.timeout"},
		{"tracing without endpoint", func(c *Config) { c.Telemetry.Tracing.Enabled = true }, "telemetry.tracing.endpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadShippedConfig(t *testing.T) {
	t.Parallel()
	cfg, err := Load(filepath.Join("..", "..", "configs", "llamadash.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Prefix != "/defillama" {
		t.Errorf("prefix = %q, want /defillama", cfg.Server.Prefix)
	}
	if cfg.Cache.Backend != BackendMemory {
		t.Errorf("backend = %q, want memory", cfg.Cache.Backend)
	}
	if got := cfg.Upstream.Hosts.Stablecoins; got != "https://stablecoins.llama.fi" {
		t.Errorf("stablecoins host = %q", got)
	}
	if cfg.Cache.PurgeOnStart {
		t.Error("shipped config should keep the cache across restarts")
	}
	if len(cfg.CORS.AllowedOrigins) != 4 {
		t.Errorf("allowed origins = %v, want 4 entries", cfg.CORS.AllowedOrigins)
	}
}
