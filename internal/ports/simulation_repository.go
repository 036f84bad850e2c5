package ports

import (
	"context"
	"fleet-simulation-service/internal/domain"
)

// Port: append-only history of simulation runs.
type SimulationRepository interface {
	SaveRun(ctx context.Context, run domain.SimulationRun) error
	// Return domain.ErrNotFound when no run has the given id.
	GetRun(ctx context.Context, id string) (domain.SimulationRun, error)
	// List runs newest first together with the total number matching the filter.
	ListRuns(ctx context.Context, filter domain.RunFilter) ([]domain.SimulationRun, int, error)
}
