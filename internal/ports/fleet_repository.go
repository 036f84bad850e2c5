package ports

import (
	"context"
	"fleet-simulation-service/internal/domain"
)

// Port: read access to the fleet snapshot a simulation runs on.
// Empty status filters return every record.
type FleetRepository interface {
	ListDrivers(ctx context.Context, status domain.DriverStatus) ([]domain.Driver, error)
	ListRoutes(ctx context.Context) ([]domain.Route, error)
	ListOrders(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
}
