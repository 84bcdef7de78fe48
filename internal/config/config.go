// Package config defines the top-level configuration for the gateway
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by MARKETMIND_* environment variables.
type Config struct {
	Provider ProviderConfig `toml:"provider"`
	Gateway  GatewayConfig  `toml:"gateway"`
	Lookup   LookupConfig   `toml:"lookup"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	Server   ServerConfig   `toml:"server"`
	LogLevel string         `toml:"log_level"`
}

// ProviderConfig holds upstream data provider parameters.
type ProviderConfig struct {
	Endpoint string   `toml:"endpoint"`
	ApiKey   string   `toml:"api_key"`
	Timeout  duration `toml:"timeout"`
	Retries  int      `toml:"retries"`
}

// GatewayConfig holds the in-memory market cache policy.
type GatewayConfig struct {
	TTL                duration `toml:"ttl"`
	MinRefreshInterval duration `toml:"min_refresh_interval"`
	DefaultLimit       int      `toml:"default_limit"`
}

// LookupConfig holds the persisted lookup cache policy. When disabled the
// lookup endpoint and the PostgreSQL dependency are not wired at all.
type LookupConfig struct {
	Enabled            bool     `toml:"enabled"`
	TTL                duration `toml:"ttl"`
	MinRefreshInterval duration `toml:"min_refresh_interval"`
	PurgeInterval      duration `toml:"purge_interval"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters and the per-client HTTP
// rate limit enforced through it. When disabled, requests are not limited.
type RedisConfig struct {
	Enabled     bool     `toml:"enabled"`
	Addr        string   `toml:"addr"`
	Password    string   `toml:"password"`
	DB          int      `toml:"db"`
	PoolSize    int      `toml:"pool_size"`
	MaxRetries  int      `toml:"max_retries"`
	TLSEnabled  bool     `toml:"tls_enabled"`
	RateLimit   int      `toml:"rate_limit"`
	RateWindow  duration `toml:"rate_window"`
}

// ServerConfig holds HTTP server parameters. An empty ApiKey disables
// request authentication.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	ApiKey      string   `toml:"api_key"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Provider: ProviderConfig{
			Endpoint: "https://gamma-api.polymarket.com",
			Timeout:  duration{30 * time.Second},
			Retries:  3,
		},
		Gateway: GatewayConfig{
			TTL:                duration{60 * time.Second},
			MinRefreshInterval: duration{30 * time.Second},
			DefaultLimit:       100,
		},
		Lookup: LookupConfig{
			Enabled:            false,
			TTL:                duration{24 * time.Hour},
			MinRefreshInterval: duration{time.Minute},
			PurgeInterval:      duration{time.Hour},
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "marketmind",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			RateLimit:  120,
			RateWindow: duration{time.Minute},
		},
		Server: ServerConfig{
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Provider
	if c.Provider.Endpoint == "" {
		errs = append(errs, "provider: endpoint must not be empty")
	}
	if c.Provider.Timeout.Duration <= 0 {
		errs = append(errs, "provider: timeout must be > 0")
	}
	if c.Provider.Retries < 0 {
		errs = append(errs, "provider: retries must be >= 0")
	}

	// Gateway
	if c.Gateway.TTL.Duration <= 0 {
		errs = append(errs, "gateway: ttl must be > 0")
	}
	if c.Gateway.MinRefreshInterval.Duration < 0 {
		errs = append(errs, "gateway: min_refresh_interval must be >= 0")
	}
	if c.Gateway.DefaultLimit < 1 {
		errs = append(errs, "gateway: default_limit must be >= 1")
	}

	// Lookup
	if c.Lookup.Enabled {
		if c.Lookup.TTL.Duration <= 0 {
			errs = append(errs, "lookup: ttl must be > 0 when enabled")
		}
		if c.Lookup.PurgeInterval.Duration <= 0 {
			errs = append(errs, "lookup: purge_interval must be > 0 when enabled")
		}
	}

	// Postgres — only needed when the lookup cache is on.
	if c.Lookup.Enabled {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns < 0 {
			errs = append(errs, "postgres: pool_min_conns must be >= 0")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
		if c.Redis.RateLimit < 1 {
			errs = append(errs, "redis: rate_limit must be >= 1 when enabled")
		}
		if c.Redis.RateWindow.Duration <= 0 {
			errs = append(errs, "redis: rate_window must be > 0 when enabled")
		}
	}

	// Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
