package ports

import (
	"context"
	"fleet-simulation-service/internal/domain"
)

// Cache of KPI records keyed by input fingerprint.
type RunCache interface {
	Get(ctx context.Context, key string) (domain.KPIs, bool, error)
	Put(ctx context.Context, key string, kpis domain.KPIs) error
}
