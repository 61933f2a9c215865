// Package config handles YAML configuration loading with environment variable expansion.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"go.yaml.in/yaml/v3"
)

// Cache backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config is the top-level proxy configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Cache     CacheConfig     `yaml:"cache"`
	CORS      CORSConfig      `yaml:"cors"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	Prefix          string        `yaml:"prefix"` // namespace for the data endpoints
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// UpstreamConfig holds origin API settings.
type UpstreamConfig struct {
	Hosts      HostsConfig   `yaml:"hosts"`
	Timeout    time.Duration `yaml:"timeout"`
	DNSCache   bool          `yaml:"dns_cache"`
	DNSRefresh time.Duration `yaml:"dns_refresh"`
}

// HostsConfig holds the base URL of every origin host.
type HostsConfig struct {
	API         string `yaml:"api"`
	Stablecoins string `yaml:"stablecoins"`
	Yields      string `yaml:"yields"`
	Bridges     string `yaml:"bridges"`
	Coins       string `yaml:"coins"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Backend      string        `yaml:"backend"` // memory, redis, sqlite
	MaxSize      int           `yaml:"max_size"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	PurgeOnStart bool          `yaml:"purge_on_start"` // drop persisted entries at startup
	Redis        RedisConfig   `yaml:"redis"`
	SQLite       SQLiteConfig  `yaml:"sqlite"`
}

// RedisConfig holds Redis cache backend settings.
type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	Prefix   string `yaml:"prefix"`
}

// SQLiteConfig holds SQLite cache backend settings.
type SQLiteConfig struct {
	DSN           string        `yaml:"dsn"` // file path or ":memory:"
	PruneInterval time.Duration `yaml:"prune_interval"`
}

// CORSConfig lists the dashboard origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// TelemetryConfig holds observability settings.
type TelemetryConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// MetricsConfig controls Prometheus metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// TracingConfig controls OpenTelemetry tracing.
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Endpoint   string  `yaml:"endpoint"`    // OTLP gRPC endpoint
	SampleRate float64 `yaml:"sample_rate"` // 0.0 to 1.0
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnv replaces ${VAR} patterns with environment variable values.
func expandEnv(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := string(match[2 : len(match)-1])
		if val, ok := os.LookupEnv(varName); ok {
			return []byte(val)
		}
		return match
	})
}

// Default returns the configuration used when a key is absent from the file.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			Prefix:          "/defillama",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Upstream: UpstreamConfig{
			Hosts: HostsConfig{
				API:         "https://api.llama.fi",
				Stablecoins: "https://stablecoins.llama.fi",
				Yields:      "https://yields.llama.fi",
				Bridges:     "https://bridges.llama.fi",
				Coins:       "https://coins.llama.fi",
			},
			Timeout:    30 * time.Second,
			DNSCache:   true,
			DNSRefresh: 5 * time.Minute,
		},
		Cache: CacheConfig{
			Enabled:      true,
			Backend:      BackendMemory,
			MaxSize:      10_000,
			WriteTimeout: 5 * time.Second,
			Redis:        RedisConfig{Prefix: "llamadash:"},
			SQLite: SQLiteConfig{
				DSN:           "llamadash-cache.db",
				PruneInterval: 10 * time.Minute,
			},
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"https://pro.openbb.co",
				"https://excel.openbb.co",
				"http://localhost:1420",
				"https://pro.openbb.dev",
			},
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads and parses a YAML config file, expanding environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	data = expandEnv(data)

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that YAML decoding cannot express.
func (c *Config) Validate() error {
	var errs []error
	if c.Cache.Enabled {
		switch c.Cache.Backend {
		case BackendMemory:
			if c.Cache.MaxSize <= 0 {
				errs = append(errs, errors.New("cache.max_size must be positive"))
			}
		case BackendRedis:
			if c.Cache.Redis.URL == "" {
				errs = append(errs, errors.New("cache.redis.url is required for the redis backend"))
			}
		case BackendSQLite:
			if c.Cache.SQLite.DSN == "" {
				errs = append(errs, errors.New("cache.sqlite.dsn is required for the sqlite backend"))
			}
		default:
			errs = append(errs, fmt.Errorf("unknown cache backend %q", c.Cache.Backend))
		}
	}
	if c.Upstream.Timeout <= 0 {
		errs = append(errs, errors.New("upstream.timeout must be positive"))
	}
	if c.Telemetry.Tracing.Enabled && c.Telemetry.Tracing.Endpoint == "" {
		errs = append(errs, errors.New("telemetry.tracing.endpoint is required when tracing is enabled"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
