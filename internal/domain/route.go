package domain

type TrafficLevel string

const (
	TrafficLow    TrafficLevel = "Low"
	TrafficMedium TrafficLevel = "Medium"
	TrafficHigh   TrafficLevel = "High"
)

const (
	// Base fuel cost per kilometre.
	FuelCostPerKm = 5.0
	// Extra cost per kilometre on high-traffic routes.
	HighTrafficSurchargePerKm = 2.0
)

// Represents a delivery route from the route catalog.
// Fuel cost is never stored; it is always derived from distance and traffic.
// AvgDeliveryTime of zero means "not yet observed" and falls back to BaseTimeMin.
type Route struct {
	RouteID              int
	Name                 string
	DistanceKm           float64
	TrafficLevel         TrafficLevel
	BaseTimeMin          int
	AvgDeliveryTime      float64
	TotalOrders          int
	SuccessfulDeliveries int
}

// FuelCost is distanceKm*5 plus distanceKm*2 on high-traffic routes. No rounding.
func FuelCost(r Route) float64 {
	cost := r.DistanceKm * FuelCostPerKm
	if r.TrafficLevel == TrafficHigh {
		cost += r.DistanceKm * HighTrafficSurchargePerKm
	}
	return cost
}

// SuccessRate returns successful deliveries as a percentage of orders, 0 with no orders.
func SuccessRate(r Route) float64 {
	if r.TotalOrders == 0 {
		return 0
	}
	return float64(r.SuccessfulDeliveries) / float64(r.TotalOrders) * 100
}

func EffectiveAvgDeliveryTime(r Route) float64 {
	if r.AvgDeliveryTime == 0 {
		return float64(r.BaseTimeMin)
	}
	return r.AvgDeliveryTime
}

// Index routes by RouteID. Later duplicates replace earlier ones.
func RouteIndex(routes []Route) map[int]Route {
	idx := make(map[int]Route, len(routes))
	for _, r := range routes {
		idx[r.RouteID] = r
	}
	return idx
}

func ValidTrafficLevel(t TrafficLevel) bool {
	switch t {
	case TrafficLow, TrafficMedium, TrafficHigh:
		return true
	}
	return false
}
