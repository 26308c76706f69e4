package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment variables recognised by applyEnv.
const (
	EnvDatabasePath   = "FOODSAVER_DB"
	EnvHTTPAddr       = "FOODSAVER_HTTP_ADDR"
	EnvUpdateInterval = "FOODSAVER_UPDATE_INTERVAL"
	EnvSeed           = "FOODSAVER_SEED"
)

func getenv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func applyEnv(cfg *Config) error {
	if v, ok := getenv(EnvDatabasePath); ok {
		cfg.Database.Path = v
	}
	if v, ok := getenv(EnvHTTPAddr); ok {
		cfg.HTTP.Addr = v
	}
	if v, ok := getenv(EnvUpdateInterval); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvUpdateInterval, err)
		}
		cfg.Simulation.UpdateInterval = d
	}
	if v, ok := getenv(EnvSeed); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		cfg.Simulation.Seed = n
	}
	return nil
}
