package api

import (
	"fleet-simulation-service/internal/api/handlers"
	"fleet-simulation-service/internal/ports"
	"net/http"

	"golang.org/x/time/rate"
)

type RouterConfig struct {
	RatePerSec float64
	Burst      int
	Metrics    http.Handler
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(fleet ports.FleetRepository, sims handlers.SimulationRunner, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	healthHandler := &handlers.HealthHandler{Repo: fleet}
	fleetHandler := &handlers.FleetHandler{Repo: fleet}
	simHandler := &handlers.SimulationHandler{Service: sims}

	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 5
	}
	if cfg.Burst < 1 {
		cfg.Burst = 10
	}
	// Simulation POSTs share one bucket; reads are not limited.
	limiter := rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst)

	mux.HandleFunc("GET /health", healthHandler.Health)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	mux.HandleFunc("GET /drivers", fleetHandler.ListDrivers)
	mux.HandleFunc("GET /drivers/stats", fleetHandler.DriverStats)
	mux.HandleFunc("GET /routes", fleetHandler.ListRoutes)
	mux.HandleFunc("GET /routes/stats", fleetHandler.RouteStats)
	mux.HandleFunc("GET /orders", fleetHandler.ListOrders)
	mux.HandleFunc("GET /orders/stats", fleetHandler.OrderStats)

	mux.Handle("POST /simulations", rateLimit(limiter, http.HandlerFunc(simHandler.Run)))
	mux.Handle("POST /simulations/batch", rateLimit(limiter, http.HandlerFunc(simHandler.RunBatch)))
	mux.HandleFunc("GET /simulations", simHandler.History)
	mux.HandleFunc("GET /simulations/{id}", simHandler.Get)

	return requestIDMiddleware(loggingMiddleware(mux))
}
