package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fleet-simulation-service/internal/adapters/repositories"
	"fleet-simulation-service/internal/api/dto"
	"fleet-simulation-service/internal/domain"
	"fleet-simulation-service/internal/services"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testRepo() *repositories.MemoryRepository {
	week := func(yesterday float64) [domain.PastWeekDays]float64 {
		return [domain.PastWeekDays]float64{6, 6, 6, 6, 6, 6, yesterday}
	}

	return repositories.NewMemoryRepository(repositories.FleetData{
		Drivers: []domain.Driver{
			{ID: "d1", Name: "Asha", PastWeekHours: week(6), Status: domain.DriverActive, Efficiency: 90},
			{ID: "d2", Name: "Ravi", PastWeekHours: week(9), Status: domain.DriverActive, Efficiency: 80},
			{ID: "d3", Name: "Meena", PastWeekHours: week(4), Status: domain.DriverOnBreak, Efficiency: 70},
		},
		Routes: []domain.Route{
			{RouteID: 1, Name: "Route 1", DistanceKm: 10, TrafficLevel: domain.TrafficLow, BaseTimeMin: 60},
		},
		Orders: []domain.Order{
			{OrderID: 1, ValueRs: 1500, RouteID: 1, DeliveryTime: "01:00", DeliveryTimeMinutes: 60, Status: domain.OrderPending, Priority: domain.PriorityHigh},
			{OrderID: 2, ValueRs: 300, RouteID: 42, DeliveryTime: "00:30", DeliveryTimeMinutes: 30, Status: domain.OrderDelivered, Priority: domain.PriorityLow},
		},
	})
}

func newTestRouter(t *testing.T, cfg RouterConfig) http.Handler {
	t.Helper()
	repo := testRepo()
	svc := services.NewSimulationService(repo, repo, nil, nil, services.SimulationServiceConfig{Timeout: time.Second})
	return NewRouter(repo, svc, cfg)
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body=%s)", err, rec.Body.String())
	}
	return v
}

func intPtr(v int) *int { return &v }

func TestHealth(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})

	rec := do(t, h, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatalf("missing %s header", requestIDHeader)
	}

	rec = do(t, h, http.MethodPost, "/health", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health status = %d, want 405", rec.Code)
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get(requestIDHeader); got != "abc-123" {
		t.Fatalf("%s = %q, want abc-123", requestIDHeader, got)
	}
}

func TestFleetEndpoints(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})

	rec := do(t, h, http.MethodGet, "/drivers?status=Active", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /drivers status = %d", rec.Code)
	}
	drivers := decode[dto.ListDriversResponse](t, rec)
	if len(drivers.Drivers) != 2 || !drivers.Drivers[1].IsFatigued {
		t.Fatalf("drivers = %+v", drivers.Drivers)
	}

	if rec := do(t, h, http.MethodGet, "/drivers?status=Sleeping", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad status filter = %d, want 400", rec.Code)
	}

	routes := decode[dto.ListRoutesResponse](t, do(t, h, http.MethodGet, "/routes", nil))
	if len(routes.Routes) != 1 || routes.Routes[0].FuelCost != 50 || routes.Routes[0].AvgDeliveryTime != 60 {
		t.Fatalf("routes = %+v", routes.Routes)
	}

	orders := decode[dto.ListOrdersResponse](t, do(t, h, http.MethodGet, "/orders", nil))
	if len(orders.Orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders.Orders))
	}
	first := orders.Orders[0]
	if first.IsOnTime == nil || !*first.IsOnTime || first.Bonus == nil || *first.Bonus != 150 || *first.Profit != 1600 {
		t.Fatalf("first order economics = %+v", first)
	}
	if orders.Orders[1].IsOnTime != nil || orders.Orders[1].Profit != nil {
		t.Fatalf("unresolved order should have no economics: %+v", orders.Orders[1])
	}

	stats := decode[dto.DriverStatsResponse](t, do(t, h, http.MethodGet, "/drivers/stats", nil))
	if stats.TotalDrivers != 3 || stats.ActiveDrivers != 2 || stats.OffDutyDrivers != 1 || stats.FatiguedDrivers != 1 || stats.AverageEfficiency != 80 {
		t.Fatalf("driver stats = %+v", stats)
	}

	rs := decode[dto.RouteStatsResponse](t, do(t, h, http.MethodGet, "/routes/stats", nil))
	if rs.TotalRoutes != 1 || rs.ByTrafficLevel["Low"] != 1 {
		t.Fatalf("route stats = %+v", rs)
	}

	os := decode[dto.OrderStatsResponse](t, do(t, h, http.MethodGet, "/orders/stats", nil))
	if os.TotalOrders != 2 || os.ByStatus["Pending"] != 1 || os.TotalValueRs != 1800 {
		t.Fatalf("order stats = %+v", os)
	}
}

func TestRunSimulationEndpoint(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})

	req := dto.SimulationRequest{Drivers: intPtr(1), StartTime: "09:00", MaxHours: intPtr(8), FuelEfficiency: intPtr(100)}
	rec := do(t, h, http.MethodPost, "/simulations", req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rec.Code, rec.Body.String())
	}

	res := decode[dto.SimulationResponse](t, rec)
	if res.Run.ID == "" || res.Run.Status != string(domain.RunCompleted) {
		t.Fatalf("run = %+v", res.Run)
	}
	want := dto.KPIsResponse{
		TotalProfit:      1600,
		EfficiencyScore:  100,
		OnTimeDeliveries: 100,
		TotalFuelCost:    50,
		AvgDeliveryTime:  60,
		TotalOrders:      1,
		TotalBonuses:     150,
	}
	if res.Run.Results != want {
		t.Fatalf("results = %+v, want %+v", res.Run.Results, want)
	}
	if len(res.SkippedOrderIDs) != 1 || res.SkippedOrderIDs[0] != 2 {
		t.Fatalf("skipped = %v, want [2]", res.SkippedOrderIDs)
	}
	if !res.Run.Parameters.RouteOptimization || res.Run.Parameters.WeatherCondition != "normal" {
		t.Fatalf("defaults not applied: %+v", res.Run.Parameters)
	}

	got := do(t, h, http.MethodGet, "/simulations/"+res.Run.ID, nil)
	if got.Code != http.StatusOK {
		t.Fatalf("GET run status = %d", got.Code)
	}
	if run := decode[dto.RunResponse](t, got); run.ID != res.Run.ID || run.Results != want {
		t.Fatalf("stored run = %+v", run)
	}

	history := decode[dto.ListRunsResponse](t, do(t, h, http.MethodGet, "/simulations?status=completed&limit=5", nil))
	if history.Pagination.Total != 1 || history.Pagination.Limit != 5 || len(history.Runs) != 1 {
		t.Fatalf("history = %+v", history)
	}
}

func TestRunSimulationEndpointErrors(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})

	tests := []struct {
		name     string
		body     any
		wantCode int
		wantErr  string
	}{
		{name: "missing drivers", body: dto.SimulationRequest{StartTime: "09:00", MaxHours: intPtr(8)}, wantCode: http.StatusBadRequest, wantErr: "VALIDATION_ERROR"},
		{name: "bad start time", body: dto.SimulationRequest{Drivers: intPtr(1), StartTime: "9am", MaxHours: intPtr(8)}, wantCode: http.StatusBadRequest, wantErr: "VALIDATION_ERROR"},
		{name: "explicit zero efficiency", body: dto.SimulationRequest{Drivers: intPtr(1), StartTime: "09:00", MaxHours: intPtr(8), FuelEfficiency: intPtr(0)}, wantCode: http.StatusBadRequest, wantErr: "VALIDATION_ERROR"},
		{name: "insufficient drivers", body: dto.SimulationRequest{Drivers: intPtr(10), StartTime: "09:00", MaxHours: intPtr(8)}, wantCode: http.StatusBadRequest, wantErr: string(services.KindInsufficientDrivers)},
		{name: "unknown field", body: map[string]any{"drivers": 1, "startTime": "09:00", "maxHours": 8, "turbo": true}, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/simulations", tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body=%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantErr == "" {
				return
			}
			if e := decode[dto.ErrorResponse](t, rec); e.Code != tt.wantErr {
				t.Fatalf("code = %q, want %q", e.Code, tt.wantErr)
			}
		})
	}

	if rec := do(t, h, http.MethodGet, "/simulations/does-not-exist", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown run status = %d, want 404", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/simulations?status=done", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad history status = %d, want 400", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/simulations?limit=ten", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit = %d, want 400", rec.Code)
	}
}

func TestRunBatchEndpoint(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})

	req := dto.BatchSimulationRequest{Runs: []dto.SimulationRequest{
		{Drivers: intPtr(1), StartTime: "09:00", MaxHours: intPtr(8)},
		{Drivers: intPtr(5), StartTime: "09:00", MaxHours: intPtr(8)},
	}}
	rec := do(t, h, http.MethodPost, "/simulations/batch", req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rec.Code, rec.Body.String())
	}

	res := decode[dto.BatchSimulationResponse](t, rec)
	if len(res.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(res.Results))
	}
	if res.Results[0].Simulation == nil || res.Results[0].Error != nil {
		t.Fatalf("first result = %+v", res.Results[0])
	}
	if res.Results[1].Error == nil || res.Results[1].Error.Code != string(services.KindInsufficientDrivers) {
		t.Fatalf("second result = %+v", res.Results[1])
	}

	if rec := do(t, h, http.MethodPost, "/simulations/batch", dto.BatchSimulationRequest{}); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty batch status = %d, want 400", rec.Code)
	}
}

func TestSimulationRateLimit(t *testing.T) {
	h := newTestRouter(t, RouterConfig{RatePerSec: 0.001, Burst: 1})
	req := dto.SimulationRequest{Drivers: intPtr(1), StartTime: "09:00", MaxHours: intPtr(8)}

	if rec := do(t, h, http.MethodPost, "/simulations", req); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}
	rec := do(t, h, http.MethodPost, "/simulations", req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}

	// Reads are not limited.
	if rec := do(t, h, http.MethodGet, "/simulations", nil); rec.Code != http.StatusOK {
		t.Fatalf("history status = %d", rec.Code)
	}
}

type failingRunner struct {
	err error
}

func (f failingRunner) Run(context.Context, domain.SimulationParameters) (services.RunOutcome, error) {
	return services.RunOutcome{Run: domain.SimulationRun{ID: "run-failed-1", Status: domain.RunFailed}}, f.err
}

func (f failingRunner) RunBatch(context.Context, []domain.SimulationParameters) ([]services.BatchItem, error) {
	return nil, errors.New("snapshot unavailable")
}

func (f failingRunner) GetRun(context.Context, string) (domain.SimulationRun, error) {
	return domain.SimulationRun{}, errors.New("db down")
}

func (f failingRunner) ListRuns(context.Context, domain.RunFilter) ([]domain.SimulationRun, int, error) {
	return nil, 0, errors.New("db down")
}

func TestFatalSimulationErrorReportsRunID(t *testing.T) {
	fatal := &services.SimulationError{Kind: services.KindTimeout, Message: "simulation exceeded 5s"}
	h := NewRouter(testRepo(), failingRunner{err: fatal}, RouterConfig{})

	req := dto.SimulationRequest{Drivers: intPtr(1), StartTime: "09:00", MaxHours: intPtr(8)}
	rec := do(t, h, http.MethodPost, "/simulations", req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	e := decode[dto.ErrorResponse](t, rec)
	if e.Code != string(services.KindTimeout) || e.RunID != "run-failed-1" {
		t.Fatalf("error = %+v", e)
	}

	if rec := do(t, h, http.MethodGet, "/simulations/x", nil); rec.Code != http.StatusInternalServerError {
		t.Fatalf("get run with failing store = %d, want 500", rec.Code)
	}
	batch := dto.BatchSimulationRequest{Runs: []dto.SimulationRequest{req}}
	if rec := do(t, h, http.MethodPost, "/simulations/batch", batch); rec.Code != http.StatusInternalServerError {
		t.Fatalf("batch with failing snapshot = %d, want 500", rec.Code)
	}
}

type brokenFleet struct{}

func (brokenFleet) ListDrivers(context.Context, domain.DriverStatus) ([]domain.Driver, error) {
	return nil, errors.New("connection refused")
}

func (brokenFleet) ListRoutes(context.Context) ([]domain.Route, error) {
	return nil, errors.New("connection refused")
}

func (brokenFleet) ListOrders(context.Context, domain.OrderStatus) ([]domain.Order, error) {
	return nil, errors.New("connection refused")
}

func TestHealthDegradedWhenStoreFails(t *testing.T) {
	h := NewRouter(brokenFleet{}, failingRunner{}, RouterConfig{})

	rec := do(t, h, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if body := decode[map[string]any](t, rec); body["status"] != "degraded" {
		t.Fatalf("body = %v", body)
	}

	if rec := do(t, h, http.MethodGet, "/drivers", nil); rec.Code != http.StatusInternalServerError {
		t.Fatalf("drivers with failing store = %d, want 500", rec.Code)
	}
}
