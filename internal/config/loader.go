package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies MARKETMIND_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known MARKETMIND_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Provider ──
	setStr(&cfg.Provider.Endpoint, "MARKETMIND_PROVIDER_ENDPOINT")
	setStr(&cfg.Provider.ApiKey, "MARKETMIND_PROVIDER_API_KEY")
	setDuration(&cfg.Provider.Timeout, "MARKETMIND_PROVIDER_TIMEOUT")
	setInt(&cfg.Provider.Retries, "MARKETMIND_PROVIDER_RETRIES")

	// ── Gateway ──
	setDuration(&cfg.Gateway.TTL, "MARKETMIND_GATEWAY_TTL")
	setDuration(&cfg.Gateway.MinRefreshInterval, "MARKETMIND_GATEWAY_MIN_REFRESH_INTERVAL")
	setInt(&cfg.Gateway.DefaultLimit, "MARKETMIND_GATEWAY_DEFAULT_LIMIT")

	// ── Lookup ──
	setBool(&cfg.Lookup.Enabled, "MARKETMIND_LOOKUP_ENABLED")
	setDuration(&cfg.Lookup.TTL, "MARKETMIND_LOOKUP_TTL")
	setDuration(&cfg.Lookup.MinRefreshInterval, "MARKETMIND_LOOKUP_MIN_REFRESH_INTERVAL")
	setDuration(&cfg.Lookup.PurgeInterval, "MARKETMIND_LOOKUP_PURGE_INTERVAL")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "MARKETMIND_POSTGRES_DSN")
	setStr(&cfg.Postgres.DSN, "MARKETMIND_DATABASE_URL") // compatibility alias
	setStr(&cfg.Postgres.Host, "MARKETMIND_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "MARKETMIND_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "MARKETMIND_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "MARKETMIND_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "MARKETMIND_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "MARKETMIND_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "MARKETMIND_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "MARKETMIND_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "MARKETMIND_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "MARKETMIND_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "MARKETMIND_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "MARKETMIND_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "MARKETMIND_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "MARKETMIND_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "MARKETMIND_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "MARKETMIND_REDIS_TLS_ENABLED")
	setInt(&cfg.Redis.RateLimit, "MARKETMIND_REDIS_RATE_LIMIT")
	setDuration(&cfg.Redis.RateWindow, "MARKETMIND_REDIS_RATE_WINDOW")

	// ── Server ──
	setInt(&cfg.Server.Port, "MARKETMIND_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "MARKETMIND_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.ApiKey, "MARKETMIND_SERVER_API_KEY")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "MARKETMIND_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
