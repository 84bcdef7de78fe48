package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "chatty"
	cfg.Provider.Endpoint = ""
	cfg.Server.Port = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("want validation error")
	}
	for _, want := range []string{"log_level", "provider", "server"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error does not mention %q: %v", want, err)
		}
	}
}

func TestValidatePostgresOnlyWhenLookupEnabled(t *testing.T) {
	cfg := Defaults()
	cfg.Postgres.Host = ""
	cfg.Postgres.Database = ""

	if err := cfg.Validate(); err != nil {
		t.Errorf("postgres settings validated while lookup disabled: %v", err)
	}

	cfg.Lookup.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Error("want validation error once lookup is enabled")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MARKETMIND_PROVIDER_API_KEY", "secret")
	t.Setenv("MARKETMIND_GATEWAY_TTL", "90s")
	t.Setenv("MARKETMIND_LOOKUP_ENABLED", "true")
	t.Setenv("MARKETMIND_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("MARKETMIND_GATEWAY_DEFAULT_LIMIT", "not a number")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	if cfg.Provider.ApiKey != "secret" {
		t.Errorf("ApiKey = %q", cfg.Provider.ApiKey)
	}
	if cfg.Gateway.TTL.Duration != 90*time.Second {
		t.Errorf("TTL = %v", cfg.Gateway.TTL.Duration)
	}
	if !cfg.Lookup.Enabled {
		t.Error("Lookup.Enabled not overridden")
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Gateway.DefaultLimit != Defaults().Gateway.DefaultLimit {
		t.Errorf("DefaultLimit = %d, want unparseable override ignored", cfg.Gateway.DefaultLimit)
	}
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Provider.ApiKey = "topsecret"
	cfg.Postgres.Password = "hunter2"

	red := RedactedConfig(&cfg)
	if red.Provider.ApiKey != "***" || red.Postgres.Password != "***" {
		t.Errorf("secrets not redacted: %+v", red.Provider)
	}
	if cfg.Provider.ApiKey != "topsecret" {
		t.Error("original config mutated")
	}
	if red.Redis.Password != "" {
		t.Error("empty secret replaced with placeholder")
	}
}
