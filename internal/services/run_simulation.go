package services

import (
	"fleet-simulation-service/internal/domain"
	"fmt"
	"time"
)

// Outcome of one engine invocation.
// On a fatal error Status is failed and KPIs hold domain.FailedKPIs.
// On a precondition error Status is empty and nothing was computed.
type SimulationResult struct {
	KPIs            domain.KPIs
	Orders          []OrderOutcome
	SkippedOrderIDs []int
	ExecutionTime   time.Duration
	Status          domain.RunStatus
}

// RunSimulation is the pure scoring engine: it checks preconditions, evaluates every
// order against its route, and folds the results and driver fatigue into KPIs.
//
// availableDrivers are the drivers eligible for the run; the first
// params.DriverCount of them participate. Inputs are never modified, and the
// same inputs always produce the same KPIs. Panics during evaluation are
// recovered into a failed result.
func RunSimulation(
	params domain.SimulationParameters,
	availableDrivers []domain.Driver,
	routes []domain.Route,
	orders []domain.Order,
) (res SimulationResult, err error) {
	start := time.Now()

	if len(availableDrivers) < params.DriverCount {
		return SimulationResult{}, newSimulationError(
			KindInsufficientDrivers,
			fmt.Sprintf("only %d drivers available, but %d requested", len(availableDrivers), params.DriverCount),
			nil,
		)
	}

	if len(routes) == 0 || len(orders) == 0 {
		return SimulationResult{}, newSimulationError(KindNoDataAvailable, "no routes or orders available for simulation", nil)
	}

	defer func() {
		if r := recover(); r != nil {
			res = failedResult(start)
			err = newSimulationError(KindInternalEvaluation, "simulation failed", fmt.Errorf("panic: %v", r))
		}
	}()

	participants := availableDrivers[:max(params.DriverCount, 0)]
	routeIdx := domain.RouteIndex(routes)

	ev := EvaluateFleetOrders(orders, routeIdx, params)
	if ev.Totals.Orders == 0 {
		return SimulationResult{SkippedOrderIDs: ev.SkippedOrderIDs}, newSimulationError(
			KindRouteNotFound,
			fmt.Sprintf("none of %d orders reference a known route", len(orders)),
			domain.ErrRouteNotFound,
		)
	}

	if !totalsFinite(ev.Totals) {
		return failedResult(start), newSimulationError(
			KindInternalEvaluation,
			"simulation failed",
			fmt.Errorf("non-finite totals (fuelEfficiency=%d)", params.FuelEfficiency),
		)
	}

	return SimulationResult{
		KPIs:            AggregateFleet(ev, participants),
		Orders:          ev.Outcomes,
		SkippedOrderIDs: ev.SkippedOrderIDs,
		ExecutionTime:   time.Since(start),
		Status:          domain.RunCompleted,
	}, nil
}

func failedResult(start time.Time) SimulationResult {
	return SimulationResult{
		KPIs:          domain.FailedKPIs(),
		ExecutionTime: time.Since(start),
		Status:        domain.RunFailed,
	}
}
