package domain

import (
	"fmt"
	"time"
)

type WeatherCondition string

const (
	WeatherExcellent WeatherCondition = "excellent"
	WeatherNormal    WeatherCondition = "normal"
	WeatherPoor      WeatherCondition = "poor"
	WeatherSevere    WeatherCondition = "severe"
)

var weatherImpact = map[WeatherCondition]float64{
	WeatherExcellent: 0.9,
	WeatherNormal:    1.0,
	WeatherPoor:      1.2,
	WeatherSevere:    1.5,
}

// WeatherImpact is the base-time multiplier for a weather condition.
// Unknown or empty conditions count as normal.
func WeatherImpact(w WeatherCondition) float64 {
	if m, ok := weatherImpact[w]; ok {
		return m
	}
	return 1.0
}

const (
	DefaultFuelEfficiency = 85
	DefaultWeather        = WeatherNormal

	MinDriverCount    = 1
	MaxDriverCount    = 50
	MinMaxHours       = 4
	MaxMaxHours       = 12
	MinFuelEfficiency = 70
	MaxFuelEfficiency = 100
)

// Input parameter set of one simulation run.
// RouteOptimization is recorded with the run but no solver reads it.
type SimulationParameters struct {
	DriverCount       int
	StartTime         string
	MaxHours          int
	RouteOptimization bool
	FuelEfficiency    int
	WeatherCondition  WeatherCondition
}

// Fill unset optional parameters. RouteOptimization defaults are applied by
// decoders, since a zero bool cannot be told apart from an explicit false.
func (p SimulationParameters) WithDefaults() SimulationParameters {
	if p.FuelEfficiency == 0 {
		p.FuelEfficiency = DefaultFuelEfficiency
	}
	if p.WeatherCondition == "" {
		p.WeatherCondition = DefaultWeather
	}
	return p
}

// Validate checks field ranges for callers that accept untrusted parameters.
func (p SimulationParameters) Validate() error {
	if p.DriverCount < MinDriverCount || p.DriverCount > MaxDriverCount {
		return fmt.Errorf("drivers must be between %d and %d", MinDriverCount, MaxDriverCount)
	}
	if _, err := ParseClock(p.StartTime); err != nil {
		return fmt.Errorf("startTime must be in HH:MM format")
	}
	if p.MaxHours < MinMaxHours || p.MaxHours > MaxMaxHours {
		return fmt.Errorf("maxHours must be between %d and %d", MinMaxHours, MaxMaxHours)
	}
	if p.FuelEfficiency < MinFuelEfficiency || p.FuelEfficiency > MaxFuelEfficiency {
		return fmt.Errorf("fuelEfficiency must be between %d and %d", MinFuelEfficiency, MaxFuelEfficiency)
	}
	if _, ok := weatherImpact[p.WeatherCondition]; !ok {
		return fmt.Errorf("weatherCondition must be one of excellent, normal, poor, severe")
	}
	return nil
}

// Aggregate results of one simulation run. Every value is rounded to a whole
// number except EfficiencyScore, which keeps one decimal place.
type KPIs struct {
	TotalProfit      int
	EfficiencyScore  float64
	OnTimeDeliveries int
	LateDeliveries   int
	TotalFuelCost    int
	AvgDeliveryTime  int
	TotalOrders      int
	TotalPenalties   int
	TotalBonuses     int
}

// FailedKPIs are the neutral placeholders recorded with a failed run.
func FailedKPIs() KPIs {
	return KPIs{LateDeliveries: 100}
}

type RunStatus string

const (
	RunCompleted  RunStatus = "completed"
	RunFailed     RunStatus = "failed"
	RunInProgress RunStatus = "in_progress"
)

func ValidRunStatus(s RunStatus) bool {
	switch s {
	case RunCompleted, RunFailed, RunInProgress:
		return true
	}
	return false
}

// Terminal record of one simulation invocation. Owned by the persistence layer;
// never modified once stored.
type SimulationRun struct {
	ID            string
	Parameters    SimulationParameters
	Results       KPIs
	ExecutionTime time.Duration
	Status        RunStatus
	ErrorCode     string
	ErrorMessage  string
	CreatedAt     time.Time
}

// Filter for listing stored runs, newest first.
type RunFilter struct {
	Status RunStatus
	Limit  int
	Offset int
}

const (
	DefaultRunListLimit = 20
	MaxRunListLimit     = 100
)

// Normalized clamps Limit to [1, MaxRunListLimit] and Offset to >= 0.
func (f RunFilter) Normalized() RunFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultRunListLimit
	}
	if f.Limit > MaxRunListLimit {
		f.Limit = MaxRunListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
