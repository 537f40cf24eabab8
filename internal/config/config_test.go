package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:8000" || cfg.Session.Backend != BackendFile {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
api:
  base_url: http://api.internal:8000
  timeout: 5s
session:
  backend: redis
redis:
  addr: localhost:6379
  ttl: 1h
log:
  level: debug
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(EnvAPIURL, "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.API.BaseURL != "http://api.internal:8000" || cfg.Session.Backend != BackendRedis || cfg.Log.Level != "debug" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Session.Key != "studyhub" {
		t.Fatalf("expected default key to survive, got %q", cfg.Session.Key)
	}
	if got := TTLDuration(cfg.Redis.TTL, time.Minute); got != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", got)
	}

	t.Setenv(EnvAPIURL, "https://studyhub.example.com")
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.API.BaseURL != "https://studyhub.example.com" {
		t.Fatalf("env override not applied, got %q", cfg.API.BaseURL)
	}
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api: [unterminated"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for empty, got %v", got)
	}
	if got := TTLDuration("soon", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for invalid, got %v", got)
	}
}
