package config

import (
	"testing"
	"time"
)

func TestLoad_DefaultsWithSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port default: %q", cfg.Port)
	}
	if cfg.DBPath != "pact.db" {
		t.Fatalf("DBPath default: %q", cfg.DBPath)
	}
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Fatalf("TokenTTL default: %v", cfg.TokenTTL)
	}
	if cfg.IdempotencyTTL != 24*time.Hour {
		t.Fatalf("IdempotencyTTL default: %v", cfg.IdempotencyTTL)
	}
	if cfg.APIBasePath != "/" {
		t.Fatalf("APIBasePath default: %q", cfg.APIBasePath)
	}
	if cfg.SeedDemo || cfg.SwaggerEnabled || cfg.OTEL.Enabled {
		t.Fatalf("opt-in flags must default off: %+v", cfg)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("GinMode default: %q", cfg.GinMode)
	}
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatalf("missing JWT_SECRET must fail validation")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("PORT", "9999")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("SEED_DEMO", "true")
	t.Setenv("API_BASE_PATH", "api/v1/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("GIN_MODE", "bogus")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9999" || cfg.TokenTTL != time.Hour || !cfg.SeedDemo {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Fatalf("base path not normalized: %q", cfg.APIBasePath)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("CSV origins not parsed: %+v", cfg.CORS.AllowedOrigins)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("unknown gin mode must normalize to release: %q", cfg.GinMode)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")

	t.Run("log level", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "verbose")
		if _, err := Load(); err == nil {
			t.Fatalf("bad LOG_LEVEL must fail")
		}
	})
	t.Run("rate burst", func(t *testing.T) {
		t.Setenv("RATE_BURST", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("RATE_BURST=0 must fail")
		}
	})
	t.Run("sample ratio", func(t *testing.T) {
		t.Setenv("OTEL_TRACES_SAMPLER_ARG", "1.5")
		if _, err := Load(); err == nil {
			t.Fatalf("out-of-range sampler arg must fail")
		}
	})
}
