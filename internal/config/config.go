// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - External errors must be wrapped via this package's error helpers.
package config

// Store backend selectors.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreBackend selects the activity store: memory or postgres.
	StoreBackend string `koanf:"store_backend"`

	// PostgresDSN is the connection string for the postgres backend.
	PostgresDSN string `koanf:"postgres_dsn"`

	// StoreQueryTimeoutMS bounds each activity store query.
	StoreQueryTimeoutMS int `koanf:"store_query_timeout_ms"`

	// PopularityTTLSeconds is the popularity snapshot freshness window.
	PopularityTTLSeconds int `koanf:"popularity_ttl_seconds"`

	// RateLimitRPS and RateLimitBurst configure per-IP rate limiting on
	// the read endpoints. An RPS of 0 disables limiting.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`

	// DemoSeed populates the memory store with generated activity on
	// startup so the endpoints serve data out of the box.
	DemoSeed bool `koanf:"demo_seed"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		StoreBackend:         StoreMemory,
		PostgresDSN:          "",
		StoreQueryTimeoutMS:  5_000,
		PopularityTTLSeconds: 300,
		RateLimitRPS:         50,
		RateLimitBurst:       100,
		DemoSeed:             false,
	}
}
