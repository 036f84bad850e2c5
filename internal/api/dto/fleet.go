package dto

type DriverResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	ShiftHours         int       `json:"shiftHours"`
	PastWeekHours      []float64 `json:"pastWeekHours"`
	Status             string    `json:"status"`
	Efficiency         float64   `json:"efficiency"`
	Deliveries         int       `json:"deliveries"`
	IsFatigued         bool      `json:"isFatigued"`
	AverageWeeklyHours float64   `json:"averageWeeklyHours"`
}

type ListDriversResponse struct {
	Drivers []DriverResponse `json:"drivers"`
}

type RouteResponse struct {
	RouteID         int     `json:"routeId"`
	Name            string  `json:"name"`
	DistanceKm      float64 `json:"distanceKm"`
	TrafficLevel    string  `json:"trafficLevel"`
	BaseTimeMin     int     `json:"baseTimeMin"`
	FuelCost        float64 `json:"fuelCost"`
	AvgDeliveryTime float64 `json:"avgDeliveryTime"`
	SuccessRate     float64 `json:"successRate"`
}

type ListRoutesResponse struct {
	Routes []RouteResponse `json:"routes"`
}

// Economics fields are nil when the order's route is unknown.
type OrderResponse struct {
	OrderID             int      `json:"orderId"`
	Customer            string   `json:"customer"`
	ValueRs             float64  `json:"valueRs"`
	RouteID             int      `json:"routeId"`
	DeliveryTime        string   `json:"deliveryTime"`
	DeliveryTimeMinutes int      `json:"deliveryTimeMinutes"`
	Status              string   `json:"status"`
	Priority            string   `json:"priority"`
	AssignedDriverID    string   `json:"assignedDriverId,omitempty"`
	IsOnTime            *bool    `json:"isOnTime"`
	Penalty             *float64 `json:"penalty"`
	Bonus               *float64 `json:"bonus"`
	Profit              *float64 `json:"profit"`
}

type ListOrdersResponse struct {
	Orders []OrderResponse `json:"orders"`
}

type DriverStatsResponse struct {
	TotalDrivers      int     `json:"totalDrivers"`
	ActiveDrivers     int     `json:"activeDrivers"`
	OffDutyDrivers    int     `json:"offDutyDrivers"`
	FatiguedDrivers   int     `json:"fatiguedDrivers"`
	AverageEfficiency float64 `json:"averageEfficiency"`
}

type RouteStatsResponse struct {
	TotalRoutes       int            `json:"totalRoutes"`
	ByTrafficLevel    map[string]int `json:"byTrafficLevel"`
	AverageDistanceKm float64        `json:"averageDistanceKm"`
}

type OrderStatsResponse struct {
	TotalOrders  int            `json:"totalOrders"`
	ByStatus     map[string]int `json:"byStatus"`
	TotalValueRs float64        `json:"totalValueRs"`
}
