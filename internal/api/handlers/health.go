package handlers

import (
	"context"
	"fleet-simulation-service/internal/ports"
	"log"
	"net/http"
	"time"
)

const healthProbeTimeout = 2 * time.Second

type HealthHandler struct {
	Repo ports.FleetRepository
}

// Health reports liveness plus whether the fleet store answers.
// An unreachable store yields 503 with status "degraded".
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
	defer cancel()

	routes, err := h.Repo.ListRoutes(ctx)
	if err != nil {
		log.Printf("health: fleet store unavailable: %v", err)
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]any{"status": "degraded", "store": "unavailable"})
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"status": "ok", "store": "ok", "routes": len(routes)})
}
