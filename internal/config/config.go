// Package config loads and validates environment variables at startup.
// Fail-fast: an invalid value stops the process before anything is served.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds all runtime configuration for the jobboard service.
type Config struct {
	Port                  string
	GRPCPort              string
	DatabaseURL           string // optional; enables search_configs lookups
	RedisURL              string // optional; enables settings-change events
	ReloadIntervalMinutes int    // how often settings are re-read from disk
	Paths                 Paths
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	interval := 15
	if s := os.Getenv("RELOAD_INTERVAL_MINUTES"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("RELOAD_INTERVAL_MINUTES must be a positive integer, got %q", s)
		}
		interval = v
	}

	port := os.Getenv("JOBBOARD_PORT")
	if port == "" {
		port = "8083"
	}
	grpcPort := os.Getenv("JOBBOARD_GRPC_PORT")
	if grpcPort == "" {
		grpcPort = "9093"
	}
	if port == grpcPort {
		return nil, fmt.Errorf("JOBBOARD_PORT and JOBBOARD_GRPC_PORT must differ, both are %q", port)
	}

	baseDir := os.Getenv("JOBBOARD_BASE_DIR")
	if baseDir == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("resolve executable path: %w", err)
		}
		baseDir = filepath.Dir(exe)
	}

	return &Config{
		Port:                  port,
		GRPCPort:              grpcPort,
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisURL:              os.Getenv("REDIS_URL"),
		ReloadIntervalMinutes: interval,
		Paths:                 NewPaths(baseDir, os.Getenv("DATA_DIR")),
	}, nil
}
