package repositories

import (
	"database/sql"
	"encoding/json"
	"fleet-simulation-service/internal/domain"
	"fmt"
	"os"
	"strings"
)

type DriverSeed struct {
	ID            string    `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	ShiftHours    int       `json:"shift_hours" yaml:"shift_hours"`
	PastWeekHours []float64 `json:"past_week_hours" yaml:"past_week_hours"`
	Status        string    `json:"status" yaml:"status"`
	Efficiency    float64   `json:"efficiency" yaml:"efficiency"`
	Deliveries    int       `json:"deliveries" yaml:"deliveries"`
}

type RouteSeed struct {
	RouteID     int     `json:"route_id" yaml:"route_id"`
	Name        string  `json:"name" yaml:"name"`
	DistanceKm  float64 `json:"distance_km" yaml:"distance_km"`
	Traffic     string  `json:"traffic_level" yaml:"traffic_level"`
	BaseTimeMin int     `json:"base_time_min" yaml:"base_time_min"`
}

type OrderSeed struct {
	OrderID          int     `json:"order_id" yaml:"order_id"`
	Customer         string  `json:"customer" yaml:"customer"`
	ValueRs          float64 `json:"value_rs" yaml:"value_rs"`
	RouteID          int     `json:"route_id" yaml:"route_id"`
	DeliveryTime     string  `json:"delivery_time" yaml:"delivery_time"`
	Status           string  `json:"status" yaml:"status"`
	Priority         string  `json:"priority" yaml:"priority"`
	AssignedDriverID string  `json:"assigned_driver_id" yaml:"assigned_driver_id"`
}

// FleetSeed is the on-disk shape of a fleet snapshot.
type FleetSeed struct {
	Drivers []DriverSeed `json:"drivers" yaml:"drivers"`
	Routes  []RouteSeed  `json:"routes" yaml:"routes"`
	Orders  []OrderSeed  `json:"orders" yaml:"orders"`
}

// Validated domain records of a FleetSeed.
type FleetData struct {
	Drivers []domain.Driver
	Routes  []domain.Route
	Orders  []domain.Order
}

// Read and validate a JSON fleet seed file.
func LoadFleetSeed(jsonPath string) (FleetData, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return FleetData{}, fmt.Errorf("load fleet seed: read %q: %w", jsonPath, err)
	}

	var seed FleetSeed
	if err := json.Unmarshal(bytes, &seed); err != nil {
		return FleetData{}, fmt.Errorf("load fleet seed: parse json: %w", err)
	}

	data, err := seed.Domain()
	if err != nil {
		return FleetData{}, fmt.Errorf("load fleet seed: %w", err)
	}
	return data, nil
}

// Domain converts seed records, applying the record defaults
// (status Active / Pending, priority Medium, route name "Route N").
func (s FleetSeed) Domain() (FleetData, error) {
	out := FleetData{
		Drivers: make([]domain.Driver, 0, len(s.Drivers)),
		Routes:  make([]domain.Route, 0, len(s.Routes)),
		Orders:  make([]domain.Order, 0, len(s.Orders)),
	}

	seenDrivers := make(map[string]struct{}, len(s.Drivers))
	for i, d := range s.Drivers {
		drv, err := d.domain()
		if err != nil {
			return FleetData{}, fmt.Errorf("driver at index %d: %w", i+1, err)
		}
		if _, dup := seenDrivers[drv.ID]; dup {
			return FleetData{}, fmt.Errorf("driver at index %d: duplicate id %q", i+1, drv.ID)
		}
		seenDrivers[drv.ID] = struct{}{}
		out.Drivers = append(out.Drivers, drv)
	}

	seenRoutes := make(map[int]struct{}, len(s.Routes))
	for i, r := range s.Routes {
		route, err := r.domain()
		if err != nil {
			return FleetData{}, fmt.Errorf("route at index %d: %w", i+1, err)
		}
		if _, dup := seenRoutes[route.RouteID]; dup {
			return FleetData{}, fmt.Errorf("route at index %d: duplicate route_id %d", i+1, route.RouteID)
		}
		seenRoutes[route.RouteID] = struct{}{}
		out.Routes = append(out.Routes, route)
	}

	seenOrders := make(map[int]struct{}, len(s.Orders))
	for i, o := range s.Orders {
		order, err := o.domain()
		if err != nil {
			return FleetData{}, fmt.Errorf("order at index %d: %w", i+1, err)
		}
		if _, dup := seenOrders[order.OrderID]; dup {
			return FleetData{}, fmt.Errorf("order at index %d: duplicate order_id %d", i+1, order.OrderID)
		}
		seenOrders[order.OrderID] = struct{}{}
		out.Orders = append(out.Orders, order)
	}

	return out, nil
}

func (d DriverSeed) domain() (domain.Driver, error) {
	id := strings.TrimSpace(d.ID)
	if id == "" {
		return domain.Driver{}, fmt.Errorf("id cannot be empty")
	}
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return domain.Driver{}, fmt.Errorf("driver %q: name cannot be empty", id)
	}

	hours, err := domain.NewPastWeekHours(d.PastWeekHours)
	if err != nil {
		return domain.Driver{}, fmt.Errorf("driver %q: %w", id, err)
	}

	status := domain.DriverStatus(d.Status)
	if status == "" {
		status = domain.DriverActive
	}
	if !domain.ValidDriverStatus(status) {
		return domain.Driver{}, fmt.Errorf("driver %q: invalid status %q", id, d.Status)
	}

	return domain.Driver{
		ID:            id,
		Name:          name,
		ShiftHours:    d.ShiftHours,
		PastWeekHours: hours,
		Status:        status,
		Efficiency:    d.Efficiency,
		Deliveries:    d.Deliveries,
	}, nil
}

func (r RouteSeed) domain() (domain.Route, error) {
	if r.RouteID <= 0 {
		return domain.Route{}, fmt.Errorf("invalid route_id: %d", r.RouteID)
	}
	if r.DistanceKm <= 0 {
		return domain.Route{}, fmt.Errorf("route %d: distance_km must be positive", r.RouteID)
	}
	if r.BaseTimeMin <= 0 {
		return domain.Route{}, fmt.Errorf("route %d: base_time_min must be positive", r.RouteID)
	}

	traffic := domain.TrafficLevel(r.Traffic)
	if !domain.ValidTrafficLevel(traffic) {
		return domain.Route{}, fmt.Errorf("route %d: invalid traffic_level %q", r.RouteID, r.Traffic)
	}

	name := strings.TrimSpace(r.Name)
	if name == "" {
		name = fmt.Sprintf("Route %d", r.RouteID)
	}

	return domain.Route{
		RouteID:         r.RouteID,
		Name:            name,
		DistanceKm:      r.DistanceKm,
		TrafficLevel:    traffic,
		BaseTimeMin:     r.BaseTimeMin,
		AvgDeliveryTime: float64(r.BaseTimeMin),
	}, nil
}

func (o OrderSeed) domain() (domain.Order, error) {
	if o.OrderID <= 0 {
		return domain.Order{}, fmt.Errorf("invalid order_id: %d", o.OrderID)
	}

	minutes, err := domain.ParseClock(o.DeliveryTime)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %d: %w", o.OrderID, err)
	}

	status := domain.OrderStatus(o.Status)
	if status == "" {
		status = domain.OrderPending
	}
	if !domain.ValidOrderStatus(status) {
		return domain.Order{}, fmt.Errorf("order %d: invalid status %q", o.OrderID, o.Status)
	}

	priority := domain.OrderPriority(o.Priority)
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !domain.ValidOrderPriority(priority) {
		return domain.Order{}, fmt.Errorf("order %d: invalid priority %q", o.OrderID, o.Priority)
	}

	return domain.Order{
		OrderID:             o.OrderID,
		Customer:            strings.TrimSpace(o.Customer),
		ValueRs:             o.ValueRs,
		RouteID:             o.RouteID,
		DeliveryTime:        o.DeliveryTime,
		DeliveryTimeMinutes: minutes,
		Status:              status,
		Priority:            priority,
		AssignedDriverID:    strings.TrimSpace(o.AssignedDriverID),
	}, nil
}

// Populate the database with the fleet data of a JSON seed file.
// Existing rows with the same keys are replaced.
func SeedFromJSON(db *sql.DB, dialect Dialect, jsonPath string) error {
	data, err := LoadFleetSeed(jsonPath)
	if err != nil {
		return fmt.Errorf("seed fleet: %w", err)
	}
	return SeedFleet(db, dialect, data)
}

func SeedFleet(db *sql.DB, dialect Dialect, data FleetData) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed fleet: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	driverStmt, err := tx.Prepare(dialect.rebind(`
	INSERT INTO drivers (
		id,
		name,
		shift_hours,
		past_week_hours,
		status,
		efficiency,
		deliveries,
		total_hours_worked,
		average_delivery_time
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		name = excluded.name,
		shift_hours = excluded.shift_hours,
		past_week_hours = excluded.past_week_hours,
		status = excluded.status,
		efficiency = excluded.efficiency,
		deliveries = excluded.deliveries,
		total_hours_worked = excluded.total_hours_worked,
		average_delivery_time = excluded.average_delivery_time;
	`))
	if err != nil {
		return fmt.Errorf("seed fleet: prepare driver insert: %w", err)
	}
	defer driverStmt.Close()

	for _, d := range data.Drivers {
		hours, err := json.Marshal(d.PastWeekHours[:])
		if err != nil {
			return fmt.Errorf("seed fleet: encode hours for driver %q: %w", d.ID, err)
		}
		if _, err := driverStmt.Exec(
			d.ID, d.Name, d.ShiftHours, string(hours), string(d.Status),
			d.Efficiency, d.Deliveries, d.TotalHoursWorked, d.AverageDeliveryTime,
		); err != nil {
			return fmt.Errorf("seed fleet: insert driver id=%q: %w", d.ID, err)
		}
	}

	routeStmt, err := tx.Prepare(dialect.rebind(`
	INSERT INTO routes (
		route_id,
		name,
		distance_km,
		traffic_level,
		base_time_min,
		avg_delivery_time,
		total_orders,
		successful_deliveries
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (route_id) DO UPDATE SET
		name = excluded.name,
		distance_km = excluded.distance_km,
		traffic_level = excluded.traffic_level,
		base_time_min = excluded.base_time_min,
		avg_delivery_time = excluded.avg_delivery_time,
		total_orders = excluded.total_orders,
		successful_deliveries = excluded.successful_deliveries;
	`))
	if err != nil {
		return fmt.Errorf("seed fleet: prepare route insert: %w", err)
	}
	defer routeStmt.Close()

	for _, r := range data.Routes {
		if _, err := routeStmt.Exec(
			r.RouteID, r.Name, r.DistanceKm, string(r.TrafficLevel), r.BaseTimeMin,
			r.AvgDeliveryTime, r.TotalOrders, r.SuccessfulDeliveries,
		); err != nil {
			return fmt.Errorf("seed fleet: insert route_id=%d: %w", r.RouteID, err)
		}
	}

	orderStmt, err := tx.Prepare(dialect.rebind(`
	INSERT INTO orders (
		order_id,
		customer,
		value_rs,
		route_id,
		delivery_time,
		delivery_time_minutes,
		status,
		priority,
		assigned_driver_id
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (order_id) DO UPDATE SET
		customer = excluded.customer,
		value_rs = excluded.value_rs,
		route_id = excluded.route_id,
		delivery_time = excluded.delivery_time,
		delivery_time_minutes = excluded.delivery_time_minutes,
		status = excluded.status,
		priority = excluded.priority,
		assigned_driver_id = excluded.assigned_driver_id;
	`))
	if err != nil {
		return fmt.Errorf("seed fleet: prepare order insert: %w", err)
	}
	defer orderStmt.Close()

	for _, o := range data.Orders {
		if _, err := orderStmt.Exec(
			o.OrderID, o.Customer, o.ValueRs, o.RouteID, o.DeliveryTime,
			o.DeliveryTimeMinutes, string(o.Status), string(o.Priority), o.AssignedDriverID,
		); err != nil {
			return fmt.Errorf("seed fleet: insert order_id=%d: %w", o.OrderID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed fleet: commit tx: %w", err)
	}

	return nil
}
