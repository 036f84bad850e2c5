package services

import (
	"fleet-simulation-service/internal/domain"
	"math"
)

// FatiguePenaltyPerDriver is the delivery slowdown contributed by each fatigued driver.
const FatiguePenaltyPerDriver = 0.30

// FatigueImpact sums the slowdown of every fatigued participating driver.
func FatigueImpact(drivers []domain.Driver) float64 {
	impact := 0.0
	for _, d := range drivers {
		if domain.IsFatigued(d) {
			impact += FatiguePenaltyPerDriver
		}
	}
	return impact
}

// FatigueMultiplier spreads the fatigue impact over the whole fleet.
// It is 1 when no participating driver is fatigued.
func FatigueMultiplier(drivers []domain.Driver) float64 {
	impact := FatigueImpact(drivers)
	if impact <= 0 {
		return 1
	}
	return 1 + impact/float64(len(drivers))
}

// AggregateFleet folds a fleet evaluation into the rounded KPI record.
// Rounding is applied here and nowhere earlier.
func AggregateFleet(ev FleetEvaluation, drivers []domain.Driver) domain.KPIs {
	t := ev.Totals
	deliveryTime := t.DeliveryTime * FatigueMultiplier(drivers)

	var avgDeliveryTime, onTimePct, latePct float64
	if t.Orders > 0 {
		n := float64(t.Orders)
		avgDeliveryTime = deliveryTime / n
		onTimePct = float64(t.OnTime) / n * 100
		latePct = float64(t.Late) / n * 100
	}

	return domain.KPIs{
		TotalProfit:      roundInt(t.Profit),
		EfficiencyScore:  roundOneDecimal(onTimePct),
		OnTimeDeliveries: roundInt(onTimePct),
		LateDeliveries:   roundInt(latePct),
		TotalFuelCost:    roundInt(t.FuelCost),
		AvgDeliveryTime:  roundInt(avgDeliveryTime),
		TotalOrders:      t.Orders,
		TotalPenalties:   roundInt(t.Penalties),
		TotalBonuses:     roundInt(t.Bonuses),
	}
}

// Halves round up (towards +Inf), so -2.5 becomes -2.
func roundInt(x float64) int {
	return int(math.Floor(x + 0.5))
}

func roundOneDecimal(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}

func totalsFinite(t FleetTotals) bool {
	for _, v := range []float64{t.Profit, t.FuelCost, t.Penalties, t.Bonuses, t.DeliveryTime} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
