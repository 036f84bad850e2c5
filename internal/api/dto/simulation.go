package dto

import "time"

// Required fields are pointers so a missing value can be told apart from zero.
type SimulationRequest struct {
	Drivers           *int   `json:"drivers"`
	StartTime         string `json:"startTime"`
	MaxHours          *int   `json:"maxHours"`
	RouteOptimization *bool  `json:"routeOptimization"`
	FuelEfficiency    *int   `json:"fuelEfficiency"`
	WeatherCondition  string `json:"weatherCondition"`
}

type BatchSimulationRequest struct {
	Runs []SimulationRequest `json:"runs"`
}

type ParametersResponse struct {
	Drivers           int    `json:"drivers"`
	StartTime         string `json:"startTime"`
	MaxHours          int    `json:"maxHours"`
	RouteOptimization bool   `json:"routeOptimization"`
	FuelEfficiency    int    `json:"fuelEfficiency"`
	WeatherCondition  string `json:"weatherCondition"`
}

type KPIsResponse struct {
	TotalProfit      int     `json:"totalProfit"`
	EfficiencyScore  float64 `json:"efficiencyScore"`
	OnTimeDeliveries int     `json:"onTimeDeliveries"`
	LateDeliveries   int     `json:"lateDeliveries"`
	TotalFuelCost    int     `json:"totalFuelCost"`
	AvgDeliveryTime  int     `json:"avgDeliveryTime"`
	TotalOrders      int     `json:"totalOrders"`
	TotalPenalties   int     `json:"totalPenalties"`
	TotalBonuses     int     `json:"totalBonuses"`
}

type RunResponse struct {
	ID              string             `json:"id"`
	Parameters      ParametersResponse `json:"parameters"`
	Results         KPIsResponse       `json:"results"`
	ExecutionTimeMs float64            `json:"executionTimeMs"`
	Status          string             `json:"status"`
	ErrorCode       string             `json:"errorCode,omitempty"`
	ErrorMessage    string             `json:"errorMessage,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
}

type OrderOutcomeResponse struct {
	OrderID                 int     `json:"orderId"`
	RouteID                 int     `json:"routeId"`
	DeliveryTimeMinutes     int     `json:"deliveryTimeMinutes"`
	IsOnTime                bool    `json:"isOnTime"`
	Penalty                 float64 `json:"penalty"`
	Bonus                   float64 `json:"bonus"`
	FuelCost                float64 `json:"fuelCost"`
	Profit                  float64 `json:"profit"`
	WeatherAdjustedBaseTime float64 `json:"weatherAdjustedBaseTime"`
}

type SimulationResponse struct {
	Run             RunResponse            `json:"run"`
	Orders          []OrderOutcomeResponse `json:"orders,omitempty"`
	SkippedOrderIDs []int                  `json:"skippedOrderIds,omitempty"`
	Cached          bool                   `json:"cached"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	RunID string `json:"runId,omitempty"`
}

type BatchItemResponse struct {
	Simulation *SimulationResponse `json:"simulation,omitempty"`
	Error      *ErrorResponse      `json:"error,omitempty"`
}

type BatchSimulationResponse struct {
	Results []BatchItemResponse `json:"results"`
}

type Pagination struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type ListRunsResponse struct {
	Runs       []RunResponse `json:"runs"`
	Pagination Pagination    `json:"pagination"`
}
