package services

import (
	"context"
	"errors"
	"fleet-simulation-service/internal/domain"
	"fleet-simulation-service/internal/platform/obs"
	"fleet-simulation-service/internal/ports"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	EventSimulationCompleted = "simulation.completed"
	EventSimulationFailed    = "simulation.failed"

	DefaultSimulationTimeout = 5 * time.Second
	DefaultBatchConcurrency  = 4
)

type SimulationServiceConfig struct {
	Timeout          time.Duration
	BatchConcurrency int
}

// SimulationService loads the fleet snapshot, runs the engine under a timeout
// and keeps the run history. Cache and Events are optional.
type SimulationService struct {
	fleet  ports.FleetRepository
	runs   ports.SimulationRepository
	cache  ports.RunCache
	events ports.EventPublisher

	timeout          time.Duration
	batchConcurrency int

	engine func(domain.SimulationParameters, []domain.Driver, []domain.Route, []domain.Order) (SimulationResult, error)
	now    func() time.Time
	newID  func() string
}

func NewSimulationService(
	fleet ports.FleetRepository,
	runs ports.SimulationRepository,
	cache ports.RunCache,
	events ports.EventPublisher,
	cfg SimulationServiceConfig,
) *SimulationService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultSimulationTimeout
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = DefaultBatchConcurrency
	}

	return &SimulationService{
		fleet:            fleet,
		runs:             runs,
		cache:            cache,
		events:           events,
		timeout:          cfg.Timeout,
		batchConcurrency: cfg.BatchConcurrency,
		engine:           RunSimulation,
		now:              time.Now,
		newID:            uuid.NewString,
	}
}

// RunOutcome is the stored run plus the per-order detail of a fresh evaluation.
// Orders is empty when the KPIs came from the cache.
type RunOutcome struct {
	Run             domain.SimulationRun
	Orders          []OrderOutcome
	SkippedOrderIDs []int
	Cached          bool
}

// BatchItem holds the result of one element of a batch; exactly one of
// Outcome.Run.ID and Err is set.
type BatchItem struct {
	Outcome RunOutcome
	Err     error
}

type fleetSnapshot struct {
	drivers []domain.Driver
	routes  []domain.Route
	orders  []domain.Order
}

// Run executes one simulation against the current fleet snapshot.
//
// Precondition failures return a *SimulationError and leave no record.
// Fatal failures (evaluation error, timeout) store a failed run, which is
// returned alongside the error.
func (s *SimulationService) Run(ctx context.Context, params domain.SimulationParameters) (out RunOutcome, err error) {
	defer obs.Time(ctx, "simulation.run")(&err)

	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return RunOutcome{}, err
	}
	return s.runOnSnapshot(ctx, params.WithDefaults(), snap)
}

// RunBatch runs independent simulations over one shared snapshot with bounded
// concurrency. Items are returned in input order; only a snapshot load failure
// fails the whole batch.
func (s *SimulationService) RunBatch(ctx context.Context, params []domain.SimulationParameters) (items []BatchItem, err error) {
	defer obs.Time(ctx, "simulation.run_batch")(&err)

	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	items = make([]BatchItem, len(params))

	var g errgroup.Group
	g.SetLimit(s.batchConcurrency)
	for i, p := range params {
		g.Go(func() error {
			out, err := s.runOnSnapshot(ctx, p.WithDefaults(), snap)
			items[i] = BatchItem{Outcome: out, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return items, nil
}

func (s *SimulationService) GetRun(ctx context.Context, id string) (run domain.SimulationRun, err error) {
	defer obs.Time(ctx, "simulation.get_run")(&err)

	run, err = s.runs.GetRun(ctx, id)
	if err != nil {
		return domain.SimulationRun{}, fmt.Errorf("simulation service: get run %q: %w", id, err)
	}
	return run, nil
}

func (s *SimulationService) ListRuns(ctx context.Context, filter domain.RunFilter) (runs []domain.SimulationRun, total int, err error) {
	defer obs.Time(ctx, "simulation.list_runs")(&err)

	runs, total, err = s.runs.ListRuns(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("simulation service: list runs: %w", err)
	}
	return runs, total, nil
}

func (s *SimulationService) loadSnapshot(ctx context.Context) (fleetSnapshot, error) {
	drivers, err := s.fleet.ListDrivers(ctx, domain.DriverActive)
	if err != nil {
		return fleetSnapshot{}, fmt.Errorf("simulation service: list drivers: %w", err)
	}
	routes, err := s.fleet.ListRoutes(ctx)
	if err != nil {
		return fleetSnapshot{}, fmt.Errorf("simulation service: list routes: %w", err)
	}
	orders, err := s.fleet.ListOrders(ctx, "")
	if err != nil {
		return fleetSnapshot{}, fmt.Errorf("simulation service: list orders: %w", err)
	}

	return fleetSnapshot{
		drivers: domain.SelectAvailableDrivers(drivers, len(drivers)),
		routes:  routes,
		orders:  orders,
	}, nil
}

func (s *SimulationService) runOnSnapshot(ctx context.Context, params domain.SimulationParameters, snap fleetSnapshot) (RunOutcome, error) {
	start := s.now()
	reqID := obs.RequestID(ctx)

	key, kerr := Fingerprint(params, snap.drivers, snap.routes, snap.orders)
	if kerr != nil {
		log.Printf("req_id=%s op=simulation.fingerprint err=%v", reqID, kerr)
	}

	if key != "" && s.cache != nil {
		kpis, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			obs.RunCacheLookups.WithLabelValues("error").Inc()
			log.Printf("req_id=%s op=simulation.cache_get err=%v", reqID, err)
		case ok:
			obs.RunCacheLookups.WithLabelValues("hit").Inc()
			run := s.newRun(params, start)
			run.Results = kpis
			run.Status = domain.RunCompleted
			run.ExecutionTime = s.now().Sub(start)
			return s.finish(ctx, RunOutcome{Run: run, Cached: true}, nil)
		default:
			obs.RunCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	res, err := s.evaluate(ctx, params, snap)

	var se *SimulationError
	if err != nil && (!errors.As(err, &se) || !se.Fatal()) {
		code := string(KindOf(err))
		obs.SimulationRuns.WithLabelValues("rejected", code).Inc()
		return RunOutcome{}, err
	}

	if n := len(res.SkippedOrderIDs); n > 0 {
		obs.SkippedOrders.Add(float64(n))
		log.Printf("req_id=%s op=simulation.run skipped_orders=%d order_ids=%v", reqID, n, res.SkippedOrderIDs)
	}

	run := s.newRun(params, start)
	run.Results = res.KPIs
	run.Status = res.Status
	run.ExecutionTime = res.ExecutionTime
	if se != nil {
		run.ErrorCode = string(se.Kind)
		run.ErrorMessage = se.Message
	}

	out := RunOutcome{Run: run, Orders: res.Orders, SkippedOrderIDs: res.SkippedOrderIDs}

	if err == nil && key != "" && s.cache != nil {
		if perr := s.cache.Put(ctx, key, res.KPIs); perr != nil {
			log.Printf("req_id=%s op=simulation.cache_put err=%v", reqID, perr)
		}
	}

	return s.finish(ctx, out, err)
}

// evaluate runs the engine in its own goroutine so an expired deadline can
// abandon it. A cancelled parent context is returned as is, not as a timeout.
func (s *SimulationService) evaluate(ctx context.Context, params domain.SimulationParameters, snap fleetSnapshot) (SimulationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type engineResult struct {
		res SimulationResult
		err error
	}
	done := make(chan engineResult, 1)
	start := s.now()

	go func() {
		res, err := s.engine(params, snap.drivers, snap.routes, snap.orders)
		done <- engineResult{res: res, err: err}
	}()

	select {
	case r := <-done:
		return r.res, r.err
	case <-ctx.Done():
		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return SimulationResult{}, fmt.Errorf("simulation service: evaluate: %w", ctx.Err())
		}
		res := SimulationResult{
			KPIs:          domain.FailedKPIs(),
			ExecutionTime: s.now().Sub(start),
			Status:        domain.RunFailed,
		}
		return res, newSimulationError(KindTimeout, fmt.Sprintf("simulation exceeded %s", s.timeout), ctx.Err())
	}
}

func (s *SimulationService) newRun(params domain.SimulationParameters, createdAt time.Time) domain.SimulationRun {
	return domain.SimulationRun{
		ID:         s.newID(),
		Parameters: params,
		CreatedAt:  createdAt.UTC(),
	}
}

// finish stores the terminal run, then reports it. Storage errors fail the call;
// publishing errors are only logged.
func (s *SimulationService) finish(ctx context.Context, out RunOutcome, runErr error) (RunOutcome, error) {
	// Detach from the request deadline so a timed out run is still recorded.
	storeCtx := context.WithoutCancel(ctx)

	if err := s.runs.SaveRun(storeCtx, out.Run); err != nil {
		return RunOutcome{}, fmt.Errorf("simulation service: save run %s: %w", out.Run.ID, err)
	}

	obs.SimulationRuns.WithLabelValues(string(out.Run.Status), out.Run.ErrorCode).Inc()
	obs.SimulationDuration.Observe(out.Run.ExecutionTime.Seconds())

	s.publish(storeCtx, out.Run)

	return out, runErr
}

func (s *SimulationService) publish(ctx context.Context, run domain.SimulationRun) {
	if s.events == nil {
		return
	}

	key := EventSimulationCompleted
	if run.Status == domain.RunFailed {
		key = EventSimulationFailed
	}

	if err := s.events.Publish(ctx, key, RunEventPayload(run)); err != nil {
		log.Printf("req_id=%s op=simulation.publish event=%s run_id=%s err=%v", obs.RequestID(ctx), key, run.ID, err)
	}
}

// RunEventPayload is the body of simulation.completed and simulation.failed events.
func RunEventPayload(run domain.SimulationRun) map[string]any {
	payload := map[string]any{
		"runId":           run.ID,
		"status":          string(run.Status),
		"executionTimeMs": run.ExecutionTime.Milliseconds(),
		"createdAt":       run.CreatedAt.Format(time.RFC3339Nano),
		"kpis": map[string]any{
			"totalProfit":      run.Results.TotalProfit,
			"efficiencyScore":  run.Results.EfficiencyScore,
			"onTimeDeliveries": run.Results.OnTimeDeliveries,
			"lateDeliveries":   run.Results.LateDeliveries,
			"totalFuelCost":    run.Results.TotalFuelCost,
			"avgDeliveryTime":  run.Results.AvgDeliveryTime,
			"totalOrders":      run.Results.TotalOrders,
			"totalPenalties":   run.Results.TotalPenalties,
			"totalBonuses":     run.Results.TotalBonuses,
		},
	}
	if run.ErrorCode != "" {
		payload["errorCode"] = run.ErrorCode
		payload["errorMessage"] = run.ErrorMessage
	}
	return payload
}
