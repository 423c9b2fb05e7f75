package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds environment-driven settings for the meter service.
type Config struct {
	DataDir     string
	Port        int
	BearerToken string
	LogLevel    string
	RandomSeed  int64
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Config{
		DataDir:  "data",
		Port:     8080,
		LogLevel: "info",
	}

	if dir := os.Getenv("METERSIM_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid PORT: %s", portStr)
		}
	} else if portStr := os.Getenv("API_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid API_PORT: %s", portStr)
		}
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	// Seed 0 means "use entropy"; a fixed seed makes runs reproducible.
	if seedStr := os.Getenv("METERSIM_RANDOM_SEED"); seedStr != "" {
		seed, err := strconv.ParseInt(seedStr, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid METERSIM_RANDOM_SEED: %s", seedStr)
		}
		cfg.RandomSeed = seed
	}

	cfg.BearerToken = os.Getenv("API_BEARER_TOKEN")

	return cfg, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
