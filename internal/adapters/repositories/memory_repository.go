package repositories

import (
	"context"
	"errors"
	"fleet-simulation-service/internal/domain"
	"fmt"
	"sort"
	"sync"
)

// MemoryRepository keeps the fleet snapshot and run history in process.
// It implements both FleetRepository and SimulationRepository.
type MemoryRepository struct {
	mu      sync.RWMutex
	drivers []domain.Driver
	routes  []domain.Route
	orders  []domain.Order
	runs    map[string]domain.SimulationRun
}

func NewMemoryRepository(data FleetData) *MemoryRepository {
	return &MemoryRepository{
		drivers: append([]domain.Driver(nil), data.Drivers...),
		routes:  append([]domain.Route(nil), data.Routes...),
		orders:  append([]domain.Order(nil), data.Orders...),
		runs:    make(map[string]domain.SimulationRun),
	}
}

// Replace the fleet snapshot. Run history is kept.
func (m *MemoryRepository) SetFleet(data FleetData) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.drivers = append([]domain.Driver(nil), data.Drivers...)
	m.routes = append([]domain.Route(nil), data.Routes...)
	m.orders = append([]domain.Order(nil), data.Orders...)
}

func (m *MemoryRepository) ListDrivers(_ context.Context, status domain.DriverStatus) ([]domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		if status == "" || d.Status == status {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *MemoryRepository) ListRoutes(_ context.Context) ([]domain.Route, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]domain.Route(nil), m.routes...), nil
}

func (m *MemoryRepository) ListOrders(_ context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Order, 0, len(m.orders))
	for _, o := range m.orders {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *MemoryRepository) SaveRun(_ context.Context, run domain.SimulationRun) error {
	if run.ID == "" {
		return errors.New("save run: id must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.runs[run.ID]; exists {
		return fmt.Errorf("save run %s: duplicate id", run.ID)
	}
	m.runs[run.ID] = run
	return nil
}

func (m *MemoryRepository) GetRun(_ context.Context, id string) (domain.SimulationRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.runs[id]
	if !ok {
		return domain.SimulationRun{}, fmt.Errorf("get run %s: %w", id, domain.ErrNotFound)
	}
	return run, nil
}

func (m *MemoryRepository) ListRuns(_ context.Context, filter domain.RunFilter) ([]domain.SimulationRun, int, error) {
	filter = filter.Normalized()

	m.mu.RLock()
	matched := make([]domain.SimulationRun, 0, len(m.runs))
	for _, r := range m.runs {
		if filter.Status == "" || r.Status == filter.Status {
			matched = append(matched, r)
		}
	}
	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	if filter.Offset >= total {
		return []domain.SimulationRun{}, total, nil
	}
	end := min(filter.Offset+filter.Limit, total)

	return matched[filter.Offset:end], total, nil
}
