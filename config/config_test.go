package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "ENV", "PORT", "DATABASE_URL", "DB_HOST", "DB_USER", "DB_NAME",
		"SNAPSHOT_RASTERIZER", "NUDGE_STEP", "SIZE_MIN", "SIZE_MAX", "SESSION_TTL"} {
		t.Setenv(k, "")
	}
	t.Setenv("EXPORT_DIR", "/tmp/exports")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("port: want=8080 got=%s", cfg.Port)
	}
	if cfg.Rasterizer != "canvas" {
		t.Fatalf("rasterizer: want=canvas got=%s", cfg.Rasterizer)
	}
	if cfg.NudgeStep != 1 || cfg.SizeMin != 10 || cfg.SizeMax != 100 {
		t.Fatalf("numeric defaults: got step=%v min=%v max=%v", cfg.NudgeStep, cfg.SizeMin, cfg.SizeMax)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("session ttl: want=30m got=%v", cfg.SessionTTL)
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("database url: want empty got=%q", cfg.DatabaseURL)
	}
	if cfg.IsProduction() {
		t.Fatalf("expected development env")
	}
}

func TestLoadBuildsConnStringFromParts(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "shop")
	t.Setenv("DB_NAME", "store")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_SSLMODE", "")
	t.Setenv("EXPORT_DIR", "/tmp/exports")
	t.Setenv("PORT", ":9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !strings.Contains(cfg.DatabaseURL, "host=db port=5432") || !strings.Contains(cfg.DatabaseURL, "sslmode=disable") {
		t.Fatalf("unexpected conn string: %s", cfg.DatabaseURL)
	}
	if cfg.Port != "9090" {
		t.Fatalf("port: want=9090 got=%s", cfg.Port)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"rasterizer": {"SNAPSHOT_RASTERIZER", "gpu"},
		"size min":   {"SIZE_MIN", "abc"},
		"bounds":     {"SIZE_MIN", "120"},
		"ttl":        {"SESSION_TTL", "soon"},
		"ttl sign":   {"SESSION_TTL", "-5m"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("EXPORT_DIR", "/tmp/exports")
			t.Setenv("SNAPSHOT_RASTERIZER", "")
			t.Setenv("SIZE_MIN", "")
			t.Setenv("SESSION_TTL", "")
			t.Setenv(kv[0], kv[1])
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", kv[0], kv[1])
			}
		})
	}
}

func TestLoadSessionTTL(t *testing.T) {
	t.Setenv("EXPORT_DIR", "/tmp/exports")
	cases := map[string]time.Duration{"45m": 45 * time.Minute, "900": 15 * time.Minute, "0": 0}
	for raw, want := range cases {
		t.Setenv("SESSION_TTL", raw)
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load %s: %v", raw, err)
		}
		if cfg.SessionTTL != want {
			t.Fatalf("SESSION_TTL=%s: want=%v got=%v", raw, want, cfg.SessionTTL)
		}
	}
}
