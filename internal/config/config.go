// Package config reads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	APIBaseURL     string
	MirrorPath     string
	RequestTimeout time.Duration
	MaxRetries     int
	ReconcileSpec  string
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		APIBaseURL:     strings.TrimSpace(os.Getenv("TASKCYCLE_API_URL")),
		MirrorPath:     strings.TrimSpace(os.Getenv("TASKCYCLE_MIRROR_PATH")),
		RequestTimeout: parseSeconds(os.Getenv("TASKCYCLE_REQUEST_TIMEOUT_SECONDS")),
		MaxRetries:     parseCount(os.Getenv("TASKCYCLE_MAX_RETRIES"), 3),
		ReconcileSpec:  strings.TrimSpace(os.Getenv("TASKCYCLE_RECONCILE_SPEC")),
	}

	if cfg.MirrorPath == "" {
		cfg.MirrorPath = "taskcycle.db"
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.ReconcileSpec == "" {
		cfg.ReconcileSpec = "@every 5m"
	}
	if cfg.APIBaseURL == "" {
		return cfg, fmt.Errorf("TASKCYCLE_API_URL is required")
	}
	return cfg, nil
}

func parseSeconds(raw string) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func parseCount(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
