package domain

import (
	"fmt"
	"strconv"
	"strings"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderInTransit OrderStatus = "In Transit"
	OrderDelivered OrderStatus = "Delivered"
	OrderCancelled OrderStatus = "Cancelled"
)

type OrderPriority string

const (
	PriorityLow    OrderPriority = "Low"
	PriorityMedium OrderPriority = "Medium"
	PriorityHigh   OrderPriority = "High"
)

const (
	// OnTimeGraceMinutes is added to a route's base time when judging lateness.
	OnTimeGraceMinutes = 10
	// LatePenalty is charged once per late order.
	LatePenalty = 50.0
	// Orders worth more than HighValueThreshold earn HighValueBonusRate when on time.
	HighValueThreshold = 1000.0
	HighValueBonusRate = 0.10
)

// Represents a single customer order bound to one route.
// DeliveryTimeMinutes is derived from DeliveryTime ("HH:MM") when the order is loaded.
// The evaluation fields (IsOnTime, Penalty, Bonus, Profit) stay zero until an
// evaluation has been applied with ApplyEconomics.
type Order struct {
	OrderID             int
	Customer            string
	ValueRs             float64
	RouteID             int
	DeliveryTime        string
	DeliveryTimeMinutes int
	Status              OrderStatus
	Priority            OrderPriority
	AssignedDriverID    string

	IsOnTime *bool
	Penalty  float64
	Bonus    float64
	Profit   float64
}

// Economics of one order evaluated against its route.
type OrderEconomics struct {
	IsOnTime bool
	Penalty  float64
	Bonus    float64
	FuelCost float64
	Profit   float64
}

// ParseClock converts a 24h "HH:MM" string into minutes since midnight.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(mm) != 2 || len(hh) < 1 || len(hh) > 2 || !digits(hh) || !digits(mm) {
		return 0, fmt.Errorf("parse clock %q: want HH:MM", s)
	}

	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("parse clock %q: invalid hour", s)
	}

	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("parse clock %q: invalid minute", s)
	}

	return h*60 + m, nil
}

func digits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// IsOnTime: delivered within the route base time plus the fixed grace period.
func IsOnTime(o Order, r Route) bool {
	return o.DeliveryTimeMinutes <= r.BaseTimeMin+OnTimeGraceMinutes
}

func Penalty(o Order, r Route) float64 {
	if IsOnTime(o, r) {
		return 0
	}
	return LatePenalty
}

func Bonus(o Order, r Route) float64 {
	if o.ValueRs > HighValueThreshold && IsOnTime(o, r) {
		return o.ValueRs * HighValueBonusRate
	}
	return 0
}

// Profit of a single order using the route's undiscounted fuel cost.
// Fleet-level profit in a simulation run discounts fuel by efficiency instead.
func Profit(o Order, r Route) float64 {
	return o.ValueRs + Bonus(o, r) - Penalty(o, r) - FuelCost(r)
}

// EvaluateOrder resolves the order's route and computes its standalone economics.
// An unresolved route is an error, never a zero-valued default.
func EvaluateOrder(o Order, routes map[int]Route) (OrderEconomics, error) {
	r, ok := routes[o.RouteID]
	if !ok {
		return OrderEconomics{}, fmt.Errorf("evaluate order %d: route %d: %w", o.OrderID, o.RouteID, ErrRouteNotFound)
	}

	return OrderEconomics{
		IsOnTime: IsOnTime(o, r),
		Penalty:  Penalty(o, r),
		Bonus:    Bonus(o, r),
		FuelCost: FuelCost(r),
		Profit:   Profit(o, r),
	}, nil
}

// Return a copy of o carrying the evaluated fields.
func ApplyEconomics(o Order, e OrderEconomics) Order {
	onTime := e.IsOnTime
	o.IsOnTime = &onTime
	o.Penalty = e.Penalty
	o.Bonus = e.Bonus
	o.Profit = e.Profit
	return o
}

func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderInTransit, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

func ValidOrderPriority(p OrderPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}
