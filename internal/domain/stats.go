package domain

type DriverSummary struct {
	TotalDrivers      int
	ActiveDrivers     int
	OffDutyDrivers    int
	FatiguedDrivers   int
	AverageEfficiency float64
}

type RouteSummary struct {
	TotalRoutes       int
	ByTrafficLevel    map[TrafficLevel]int
	AverageDistanceKm float64
}

type OrderSummary struct {
	TotalOrders  int
	ByStatus     map[OrderStatus]int
	TotalValueRs float64
}

// OffDutyDrivers counts every non-active driver, including those on break.
func SummarizeDrivers(drivers []Driver) DriverSummary {
	s := DriverSummary{TotalDrivers: len(drivers)}
	if len(drivers) == 0 {
		return s
	}

	totalEfficiency := 0.0
	for _, d := range drivers {
		if d.Status == DriverActive {
			s.ActiveDrivers++
		}
		if IsFatigued(d) {
			s.FatiguedDrivers++
		}
		totalEfficiency += d.Efficiency
	}
	s.OffDutyDrivers = s.TotalDrivers - s.ActiveDrivers
	s.AverageEfficiency = totalEfficiency / float64(len(drivers))

	return s
}

func SummarizeRoutes(routes []Route) RouteSummary {
	s := RouteSummary{TotalRoutes: len(routes), ByTrafficLevel: map[TrafficLevel]int{}}
	if len(routes) == 0 {
		return s
	}

	totalDistance := 0.0
	for _, r := range routes {
		s.ByTrafficLevel[r.TrafficLevel]++
		totalDistance += r.DistanceKm
	}
	s.AverageDistanceKm = totalDistance / float64(len(routes))

	return s
}

func SummarizeOrders(orders []Order) OrderSummary {
	s := OrderSummary{TotalOrders: len(orders), ByStatus: map[OrderStatus]int{}}
	for _, o := range orders {
		s.ByStatus[o.Status]++
		s.TotalValueRs += o.ValueRs
	}
	return s
}
