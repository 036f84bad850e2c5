package repositories

import (
	"context"
	"errors"
	"fleet-simulation-service/internal/domain"
	"testing"
	"time"
)

func TestMemoryRepositoryFleetFilters(t *testing.T) {
	data, err := LoadFleetSeed("testdata/fleet.json")
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	repo := NewMemoryRepository(data)
	ctx := context.Background()

	active, _ := repo.ListDrivers(ctx, domain.DriverActive)
	if len(active) != 2 {
		t.Fatalf("expected 2 active drivers, got %d", len(active))
	}

	delivered, _ := repo.ListOrders(ctx, domain.OrderDelivered)
	if len(delivered) != 1 || delivered[0].OrderID != 1 {
		t.Fatalf("delivered orders = %+v", delivered)
	}

	routes, _ := repo.ListRoutes(ctx)
	routes[0].DistanceKm = 999
	again, _ := repo.ListRoutes(ctx)
	if again[0].DistanceKm == 999 {
		t.Fatalf("ListRoutes exposed internal storage")
	}

	repo.SetFleet(FleetData{})
	if routes, _ := repo.ListRoutes(ctx); len(routes) != 0 {
		t.Fatalf("expected no routes after SetFleet, got %d", len(routes))
	}
}

func TestMemoryRepositoryRuns(t *testing.T) {
	repo := NewMemoryRepository(FleetData{})
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c", "d"} {
		status := domain.RunCompleted
		if i%2 == 1 {
			status = domain.RunFailed
		}
		run := domain.SimulationRun{ID: id, Status: status, CreatedAt: base.Add(time.Duration(i) * time.Second)}
		if err := repo.SaveRun(ctx, run); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	if err := repo.SaveRun(ctx, domain.SimulationRun{ID: "a"}); err == nil {
		t.Fatalf("expected duplicate id error")
	}
	if _, err := repo.GetRun(ctx, "zzz"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	list, total, err := repo.ListRuns(ctx, domain.RunFilter{Status: domain.RunFailed})
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if total != 2 || len(list) != 2 || list[0].ID != "d" || list[1].ID != "b" {
		t.Fatalf("failed runs = %v total=%d", runIDs(list), total)
	}

	list, total, _ = repo.ListRuns(ctx, domain.RunFilter{Offset: 10})
	if total != 4 || len(list) != 0 {
		t.Fatalf("offset past end = %v total=%d", runIDs(list), total)
	}
}
