package main

import (
	"context"
	"errors"
	"fleet-simulation-service/internal/adapters/cache"
	"fleet-simulation-service/internal/adapters/events"
	"fleet-simulation-service/internal/adapters/repositories"
	"fleet-simulation-service/internal/api"
	"fleet-simulation-service/internal/config"
	"fleet-simulation-service/internal/platform/db"
	"fleet-simulation-service/internal/platform/obs"
	"fleet-simulation-service/internal/ports"
	"fleet-simulation-service/internal/services"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
)

type stores struct {
	fleet  ports.FleetRepository
	runs   ports.SimulationRepository
	closer io.Closer
}

// main is the application composition root.
// It wires concrete adapters (SQL or memory store, Redis, AMQP) behind ports
// and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if st.closer != nil {
		defer st.closer.Close()
	}

	var runCache ports.RunCache
	if cfg.RedisURL != "" {
		rdb, err := cache.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal(err)
		}
		defer rdb.Close()
		runCache = cache.NewRedisRunCache(rdb, cfg.RunCacheTTL)
		log.Printf("run cache enabled ttl=%s", cfg.RunCacheTTL)
	}

	var publisher ports.EventPublisher = events.LogPublisher{}
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatal(err)
		}
		defer p.Close()
		publisher = p
		log.Printf("publishing run events exchange=%s", cfg.AMQPExchange)
	}

	obs.RegisterDefault()

	svc := services.NewSimulationService(st.fleet, st.runs, runCache, publisher, services.SimulationServiceConfig{
		Timeout:          cfg.SimulationTimeout,
		BatchConcurrency: cfg.BatchConcurrency,
	})
	router := api.NewRouter(st.fleet, svc, api.RouterConfig{
		RatePerSec: cfg.RatePerSec,
		Burst:      cfg.Burst,
		Metrics:    obs.Handler(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server listening addr=:%s store=%s", cfg.Port, cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func openStores(cfg *config.Config) (stores, error) {
	if cfg.DBDriver == config.DriverMemory {
		data, err := repositories.LoadFleetSeed(cfg.SeedPath)
		if err != nil {
			return stores{}, fmt.Errorf("open stores: %w", err)
		}
		repo := repositories.NewMemoryRepository(data)
		return stores{fleet: repo, runs: repo}, nil
	}

	dsn := cfg.DBPath
	if cfg.DBDriver == config.DriverPostgres {
		dsn = cfg.DatabaseURL
	}

	conn, dialect, err := db.OpenDialect(cfg.DBDriver, dsn)
	if err != nil {
		return stores{}, fmt.Errorf("open stores: %w", err)
	}

	// Initialize schema and seed demo data on startup for local runs.
	if err := repositories.InitSchema(conn); err != nil {
		conn.Close()
		return stores{}, fmt.Errorf("open stores: %w", err)
	}
	if cfg.SeedOnStart {
		if err := repositories.SeedFromJSON(conn, dialect, cfg.SeedPath); err != nil {
			conn.Close()
			return stores{}, fmt.Errorf("open stores: %w", err)
		}
	}

	return stores{
		fleet:  repositories.NewSQLFleetRepository(conn, dialect),
		runs:   repositories.NewSQLSimulationRepository(conn, dialect),
		closer: conn,
	}, nil
}
