// Package config loads environment-based settings for the simulation service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port        string
	DBDriver    string
	DBPath      string
	DatabaseURL string
	SeedPath    string
	SeedOnStart bool

	RedisURL    string
	RunCacheTTL time.Duration

	AMQPURL      string
	AMQPExchange string

	SimulationTimeout time.Duration
	RatePerSec        float64
	Burst             int
	BatchConcurrency  int
}

// Get returns the environment value of key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	seedOnStart, err := boolWithDefault("SEED_ON_START", true)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := durationWithDefault("RUN_CACHE_TTL", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	timeout, err := durationWithDefault("SIMULATION_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	rate, err := floatWithDefault("SIMULATION_RATE_PER_SEC", 5)
	if err != nil {
		return nil, err
	}
	burst, err := intWithDefault("SIMULATION_BURST", 10)
	if err != nil {
		return nil, err
	}
	batch, err := intWithDefault("BATCH_CONCURRENCY", 4)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:              Get("PORT", "8080"),
		DBDriver:          strings.ToLower(Get("DB_DRIVER", DriverSQLite)),
		DBPath:            Get("DB_PATH", "data/app.db"),
		DatabaseURL:       Get("DATABASE_URL", ""),
		SeedPath:          Get("SEED_PATH", "data/seeds/fleet.json"),
		SeedOnStart:       seedOnStart,
		RedisURL:          Get("REDIS_URL", ""),
		RunCacheTTL:       cacheTTL,
		AMQPURL:           Get("AMQP_URL", ""),
		AMQPExchange:      Get("AMQP_EXCHANGE", "fleetsim.events"),
		SimulationTimeout: timeout,
		RatePerSec:        rate,
		Burst:             burst,
		BatchConcurrency:  batch,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverSQLite, DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_DRIVER=%s", DriverPostgres)
		}
	default:
		return fmt.Errorf("invalid DB_DRIVER: %s", c.DBDriver)
	}

	if n, err := strconv.Atoi(c.Port); err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("invalid PORT: %s", c.Port)
	}
	if c.SimulationTimeout <= 0 {
		return fmt.Errorf("SIMULATION_TIMEOUT must be positive, got %s", c.SimulationTimeout)
	}
	if c.RunCacheTTL <= 0 {
		return fmt.Errorf("RUN_CACHE_TTL must be positive, got %s", c.RunCacheTTL)
	}
	if c.RatePerSec <= 0 {
		return fmt.Errorf("SIMULATION_RATE_PER_SEC must be positive, got %v", c.RatePerSec)
	}
	if c.Burst < 1 {
		return fmt.Errorf("SIMULATION_BURST must be at least 1, got %d", c.Burst)
	}
	if c.BatchConcurrency < 1 {
		return fmt.Errorf("BATCH_CONCURRENCY must be at least 1, got %d", c.BatchConcurrency)
	}
	return nil
}

func intWithDefault(key string, fallback int) (int, error) {
	raw := Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func floatWithDefault(key string, fallback float64) (float64, error) {
	raw := Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func boolWithDefault(key string, fallback bool) (bool, error) {
	raw := Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func durationWithDefault(key string, fallback time.Duration) (time.Duration, error) {
	raw := Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}
