package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Session slot backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Environment overrides.
const (
	EnvAPIURL = "STUDYHUB_API_URL"
	EnvConfig = "STUDYHUB_CONFIG"
)

type Config struct {
	API struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"api"`
	Session struct {
		Backend string `yaml:"backend"`
		Key     string `yaml:"key"`
		File    string `yaml:"file"`
	} `yaml:"session"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.API.BaseURL = "http://localhost:8000"
	cfg.API.Timeout = "30s"
	cfg.Session.Backend = BackendFile
	cfg.Session.Key = "studyhub"
	cfg.Redis.TTL = "168h"
	cfg.Log.Level = "info"
	return cfg
}

// Load reads YAML config from path on top of the defaults. A missing file is
// not an error. STUDYHUB_API_URL overrides the API base URL.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, err
			}
		}
	}
	if url := os.Getenv(EnvAPIURL); url != "" {
		cfg.API.BaseURL = url
	}
	if cfg.Session.Backend == "" {
		cfg.Session.Backend = BackendFile
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
