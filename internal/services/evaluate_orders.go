package services

import (
	"fleet-simulation-service/internal/domain"
)

// Economics of one order within a fleet simulation pass.
//
// FuelCost and Profit use the efficiency-adjusted fleet fuel cost.
// StandaloneProfit is domain.Profit, which charges the undiscounted route
// fuel cost; the two only agree at 100% fuel efficiency.
type OrderOutcome struct {
	OrderID             int
	RouteID             int
	DeliveryTimeMinutes int
	IsOnTime            bool
	Penalty             float64
	Bonus               float64
	FuelCost            float64
	Profit              float64
	StandaloneProfit    float64

	// Route base time scaled by the run's weather impact. Reported only;
	// the on-time check still compares against the unscaled base time.
	WeatherAdjustedBaseTime float64
}

// Unrounded running totals of a fleet pass.
type FleetTotals struct {
	Orders       int
	OnTime       int
	Late         int
	Profit       float64
	FuelCost     float64
	Penalties    float64
	Bonuses      float64
	DeliveryTime float64
}

type FleetEvaluation struct {
	Outcomes        []OrderOutcome
	SkippedOrderIDs []int
	Totals          FleetTotals
}

// FleetFuelCost is the route fuel cost divided by the fuel efficiency fraction,
// so lower efficiency means higher cost.
func FleetFuelCost(r domain.Route, fuelEfficiency int) float64 {
	return domain.FuelCost(r) / (float64(fuelEfficiency) / 100)
}

// Evaluate one order against its resolved route under the run's conditions.
func EvaluateOrderForFleet(
	o domain.Order,
	r domain.Route,
	weather domain.WeatherCondition,
	fuelEfficiency int,
) OrderOutcome {
	onTime := domain.IsOnTime(o, r)
	penalty := domain.Penalty(o, r)
	bonus := domain.Bonus(o, r)
	fuelCost := FleetFuelCost(r, fuelEfficiency)

	return OrderOutcome{
		OrderID:                 o.OrderID,
		RouteID:                 r.RouteID,
		DeliveryTimeMinutes:     o.DeliveryTimeMinutes,
		IsOnTime:                onTime,
		Penalty:                 penalty,
		Bonus:                   bonus,
		FuelCost:                fuelCost,
		Profit:                  o.ValueRs + bonus - penalty - fuelCost,
		StandaloneProfit:        domain.Profit(o, r),
		WeatherAdjustedBaseTime: float64(r.BaseTimeMin) * domain.WeatherImpact(weather),
	}
}

// EvaluateFleetOrders runs the per-order rules over the whole batch.
//
// Orders whose route does not resolve are skipped and listed in SkippedOrderIDs;
// they contribute nothing to any total. The batch is never aborted for them.
func EvaluateFleetOrders(
	orders []domain.Order,
	routes map[int]domain.Route,
	params domain.SimulationParameters,
) FleetEvaluation {
	ev := FleetEvaluation{Outcomes: make([]OrderOutcome, 0, len(orders))}

	for _, o := range orders {
		r, ok := routes[o.RouteID]
		if !ok {
			ev.SkippedOrderIDs = append(ev.SkippedOrderIDs, o.OrderID)
			continue
		}

		out := EvaluateOrderForFleet(o, r, params.WeatherCondition, params.FuelEfficiency)
		ev.Outcomes = append(ev.Outcomes, out)

		t := &ev.Totals
		t.Orders++
		if out.IsOnTime {
			t.OnTime++
		} else {
			t.Late++
		}
		t.Penalties += out.Penalty
		t.Bonuses += out.Bonus
		t.FuelCost += out.FuelCost
		t.Profit += out.Profit
		t.DeliveryTime += float64(out.DeliveryTimeMinutes)
	}

	return ev
}
