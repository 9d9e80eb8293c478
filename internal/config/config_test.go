package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_PORT", "DB_DRIVER", "DEFAULT_OWNER_ID", "AUTH_REQUIRED", "TIMEZONE", "CORS_ORIGINS"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.HTTPPort != "5001" {
		t.Fatalf("http port: got=%q want=%q", cfg.HTTPPort, "5001")
	}
	if cfg.DBDriver != "pgx" {
		t.Fatalf("db driver: got=%q want=%q", cfg.DBDriver, "pgx")
	}
	if cfg.DefaultOwnerID != "1" {
		t.Fatalf("default owner: got=%q want=%q", cfg.DefaultOwnerID, "1")
	}
	if cfg.AuthRequired {
		t.Fatalf("auth required: got=true want=false")
	}
	if cfg.Location() != time.UTC {
		t.Fatalf("location: got=%v want=UTC", cfg.Location())
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("cors origins: got=%v", cfg.CORSOrigins)
	}
}

func TestLoadOverridesAndWarnings(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("AUTH_REQUIRED", "true")
	t.Setenv("ACCESS_TTL", "not-a-duration")
	t.Setenv("RATE_LIMIT_PER_MIN", "abc")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("OTEL_SAMPLER_RATIO", "2")

	cfg := Load()
	if cfg.HTTPPort != "9000" {
		t.Fatalf("http port: got=%q", cfg.HTTPPort)
	}
	if !cfg.AuthRequired {
		t.Fatalf("auth required: got=false want=true")
	}
	if cfg.AccessTTL != 24*time.Hour {
		t.Fatalf("access ttl fallback: got=%s", cfg.AccessTTL)
	}
	if cfg.RateLimitPerMin != 120 {
		t.Fatalf("rate limit fallback: got=%d", cfg.RateLimitPerMin)
	}
	if cfg.OtelSampleRatio != 0.1 {
		t.Fatalf("sample ratio fallback: got=%g", cfg.OtelSampleRatio)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("cors origins: got=%v", cfg.CORSOrigins)
	}
	if len(cfg.Warnings) != 3 {
		t.Fatalf("warnings: got=%d want=3 (%v)", len(cfg.Warnings), cfg.Warnings)
	}
}

func TestLoadUnknownTimezoneWarns(t *testing.T) {
	t.Setenv("TIMEZONE", "Mars/Olympus_Mons")
	cfg := Load()
	if cfg.Timezone != "UTC" {
		t.Fatalf("timezone fallback: got=%q want=%q", cfg.Timezone, "UTC")
	}
	found := false
	for _, w := range cfg.Warnings {
		if strings.Contains(w, "TIMEZONE") {
			found = true
		}
	}
	if !found {
		t.Fatalf("warnings: got=%v want a TIMEZONE warning", cfg.Warnings)
	}

	t.Setenv("TIMEZONE", "Europe/Berlin")
	cfg = Load()
	if cfg.Timezone != "Europe/Berlin" || cfg.Location().String() != "Europe/Berlin" {
		t.Fatalf("timezone: got=%q location=%v", cfg.Timezone, cfg.Location())
	}
}
