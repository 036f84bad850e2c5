package config

import (
	"strings"
	"testing"
	"time"
)

var configKeys = []string{
	"PORT", "DB_DRIVER", "DB_PATH", "DATABASE_URL", "SEED_PATH", "SEED_ON_START",
	"REDIS_URL", "RUN_CACHE_TTL", "AMQP_URL", "AMQP_EXCHANGE", "SIMULATION_TIMEOUT",
	"SIMULATION_RATE_PER_SEC", "SIMULATION_BURST", "BATCH_CONCURRENCY",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" || cfg.DBDriver != DriverSQLite || cfg.DBPath != "data/app.db" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.SeedOnStart || cfg.SeedPath != "data/seeds/fleet.json" {
		t.Fatalf("seed defaults = %v %q", cfg.SeedOnStart, cfg.SeedPath)
	}
	if cfg.SimulationTimeout != 5*time.Second || cfg.RunCacheTTL != 10*time.Minute {
		t.Fatalf("durations = %s %s", cfg.SimulationTimeout, cfg.RunCacheTTL)
	}
	if cfg.RatePerSec != 5 || cfg.Burst != 10 || cfg.BatchConcurrency != 4 {
		t.Fatalf("limits = %v %d %d", cfg.RatePerSec, cfg.Burst, cfg.BatchConcurrency)
	}
	if cfg.AMQPExchange != "fleetsim.events" {
		t.Fatalf("AMQPExchange = %q", cfg.AMQPExchange)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://fleet@localhost/fleet")
	t.Setenv("SEED_ON_START", "false")
	t.Setenv("SIMULATION_TIMEOUT", "250ms")
	t.Setenv("BATCH_CONCURRENCY", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DBDriver != DriverPostgres || cfg.SeedOnStart || cfg.SimulationTimeout != 250*time.Millisecond || cfg.BatchConcurrency != 8 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key, value, wantErr string
	}{
		{key: "DB_DRIVER", value: "mongo", wantErr: "invalid DB_DRIVER"},
		{key: "DB_DRIVER", value: "postgres", wantErr: "DATABASE_URL is required"},
		{key: "PORT", value: "http", wantErr: "invalid PORT"},
		{key: "SEED_ON_START", value: "maybe", wantErr: "invalid SEED_ON_START"},
		{key: "SIMULATION_TIMEOUT", value: "5", wantErr: "invalid SIMULATION_TIMEOUT"},
		{key: "SIMULATION_TIMEOUT", value: "-1s", wantErr: "must be positive"},
		{key: "SIMULATION_BURST", value: "0", wantErr: "SIMULATION_BURST must be at least 1"},
		{key: "BATCH_CONCURRENCY", value: "x", wantErr: "invalid BATCH_CONCURRENCY"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestGetFallback(t *testing.T) {
	t.Setenv("FLEETSIM_TEST_KEY", "  ")
	if got := Get("FLEETSIM_TEST_KEY", "fallback"); got != "fallback" {
		t.Fatalf("Get = %q, want fallback", got)
	}
	t.Setenv("FLEETSIM_TEST_KEY", "value")
	if got := Get("FLEETSIM_TEST_KEY", "fallback"); got != "value" {
		t.Fatalf("Get = %q, want value", got)
	}
}
