package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fleet-simulation-service/internal/domain"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := InitSchema(db); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return db
}

func TestSQLFleetRepositoryRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := SeedFromJSON(db, SQLite, "testdata/fleet.json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// Seeding twice replaces rows instead of failing.
	if err := SeedFromJSON(db, SQLite, "testdata/fleet.json"); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	repo := NewSQLFleetRepository(db, SQLite)

	all, err := repo.ListDrivers(ctx, "")
	if err != nil {
		t.Fatalf("list drivers: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 drivers, got %d", len(all))
	}
	want := [domain.PastWeekDays]float64{6, 8, 7, 7, 7, 6, 10}
	if all[0].ID != "d1" || all[0].PastWeekHours != want {
		t.Fatalf("first driver = %+v", all[0])
	}

	active, err := repo.ListDrivers(ctx, domain.DriverActive)
	if err != nil {
		t.Fatalf("list active drivers: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active drivers, got %d", len(active))
	}

	routes, err := repo.ListRoutes(ctx)
	if err != nil {
		t.Fatalf("list routes: %v", err)
	}
	if len(routes) != 2 || routes[1].Name != "Ring Road" || routes[1].TrafficLevel != domain.TrafficHigh {
		t.Fatalf("routes = %+v", routes)
	}

	pending, err := repo.ListOrders(ctx, domain.OrderPending)
	if err != nil {
		t.Fatalf("list pending orders: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending orders, got %d", len(pending))
	}
	if pending[0].OrderID != 2 || pending[0].DeliveryTimeMinutes != 79 || pending[0].Priority != domain.PriorityHigh {
		t.Fatalf("first pending order = %+v", pending[0])
	}
}

func TestSQLSimulationRepository(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewSQLSimulationRepository(db, SQLite)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	params := domain.SimulationParameters{
		DriverCount:       3,
		StartTime:         "09:00",
		MaxHours:          8,
		RouteOptimization: true,
		FuelEfficiency:    85,
		WeatherCondition:  domain.WeatherPoor,
	}

	runs := []domain.SimulationRun{
		{ID: "a", Parameters: params, Results: domain.KPIs{TotalProfit: 1200, EfficiencyScore: 66.7, TotalOrders: 3}, Status: domain.RunCompleted, ExecutionTime: 3 * time.Millisecond, CreatedAt: base},
		{ID: "b", Parameters: params, Results: domain.FailedKPIs(), Status: domain.RunFailed, ErrorCode: "SIMULATION_TIMEOUT", ErrorMessage: "simulation exceeded 5s", CreatedAt: base.Add(time.Minute)},
		{ID: "c", Parameters: params, Results: domain.KPIs{TotalProfit: 900}, Status: domain.RunCompleted, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, r := range runs {
		if err := repo.SaveRun(ctx, r); err != nil {
			t.Fatalf("save run %s: %v", r.ID, err)
		}
	}

	if err := repo.SaveRun(ctx, runs[0]); err == nil {
		t.Fatalf("expected duplicate id error")
	}

	got, err := repo.GetRun(ctx, "a")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if got.Parameters != params || got.Results != runs[0].Results || got.ExecutionTime != runs[0].ExecutionTime {
		t.Fatalf("get run = %+v, want %+v", got, runs[0])
	}
	if !got.CreatedAt.Equal(base) {
		t.Fatalf("CreatedAt = %v, want %v", got.CreatedAt, base)
	}

	failed, err := repo.GetRun(ctx, "b")
	if err != nil {
		t.Fatalf("get failed run: %v", err)
	}
	if failed.ErrorCode != "SIMULATION_TIMEOUT" || failed.Results.LateDeliveries != 100 {
		t.Fatalf("failed run = %+v", failed)
	}

	if _, err := repo.GetRun(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	list, total, err := repo.ListRuns(ctx, domain.RunFilter{Limit: 2})
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if total != 3 || len(list) != 2 || list[0].ID != "c" || list[1].ID != "b" {
		t.Fatalf("list = %v total=%d", runIDs(list), total)
	}

	list, total, err = repo.ListRuns(ctx, domain.RunFilter{Status: domain.RunCompleted, Offset: 1})
	if err != nil {
		t.Fatalf("list completed runs: %v", err)
	}
	if total != 2 || len(list) != 1 || list[0].ID != "a" {
		t.Fatalf("completed list = %v total=%d", runIDs(list), total)
	}
}

func runIDs(runs []domain.SimulationRun) []string {
	ids := make([]string, 0, len(runs))
	for _, r := range runs {
		ids = append(ids, r.ID)
	}
	return ids
}
