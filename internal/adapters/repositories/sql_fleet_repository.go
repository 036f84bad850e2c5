package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fleet-simulation-service/internal/domain"
	"fleet-simulation-service/internal/platform/obs"
	"fmt"
)

// SQL-backed implementation of the FleetRepository port, for SQLite or Postgres.
type SQLFleetRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLFleetRepository(db *sql.DB, dialect Dialect) *SQLFleetRepository {
	return &SQLFleetRepository{DB: db, Dialect: dialect}
}

// Return drivers ordered by id, optionally filtered by status.
func (s *SQLFleetRepository) ListDrivers(ctx context.Context, status domain.DriverStatus) (_ []domain.Driver, err error) {
	defer obs.Time(ctx, "fleet.repo.ListDrivers")(&err)

	if s.DB == nil {
		return nil, errors.New("sql fleet repository: DB is nil")
	}

	query := `
	SELECT
		id,
		name,
		shift_hours,
		past_week_hours,
		status,
		efficiency,
		deliveries,
		total_hours_worked,
		average_delivery_time
	FROM drivers
	WHERE (CAST(? AS TEXT) = '' OR status = ?)
	ORDER BY id;
	`
	rows, err := s.DB.QueryContext(ctx, s.Dialect.rebind(query), string(status), string(status))
	if err != nil {
		return nil, fmt.Errorf("list drivers: query drivers table: %w", err)
	}
	defer rows.Close()

	drivers := make([]domain.Driver, 0, 16)
	for rows.Next() {
		var d domain.Driver
		var hoursJSON, st string
		if err := rows.Scan(
			&d.ID, &d.Name, &d.ShiftHours, &hoursJSON, &st,
			&d.Efficiency, &d.Deliveries, &d.TotalHoursWorked, &d.AverageDeliveryTime,
		); err != nil {
			return nil, fmt.Errorf("list drivers: scan row: %w", err)
		}

		var hours []float64
		if err := json.Unmarshal([]byte(hoursJSON), &hours); err != nil {
			return nil, fmt.Errorf("list drivers: decode past_week_hours of %q: %w", d.ID, err)
		}
		if d.PastWeekHours, err = domain.NewPastWeekHours(hours); err != nil {
			return nil, fmt.Errorf("list drivers: driver %q: %w", d.ID, err)
		}
		d.Status = domain.DriverStatus(st)

		drivers = append(drivers, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list drivers: row iteration: %w", err)
	}

	return drivers, nil
}

// Return all routes ordered by route id.
func (s *SQLFleetRepository) ListRoutes(ctx context.Context) (_ []domain.Route, err error) {
	defer obs.Time(ctx, "fleet.repo.ListRoutes")(&err)

	if s.DB == nil {
		return nil, errors.New("sql fleet repository: DB is nil")
	}

	query := `
	SELECT
		route_id,
		name,
		distance_km,
		traffic_level,
		base_time_min,
		avg_delivery_time,
		total_orders,
		successful_deliveries
	FROM routes
	ORDER BY route_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list routes: query routes table: %w", err)
	}
	defer rows.Close()

	routes := make([]domain.Route, 0, 16)
	for rows.Next() {
		var r domain.Route
		var traffic string
		if err := rows.Scan(
			&r.RouteID, &r.Name, &r.DistanceKm, &traffic, &r.BaseTimeMin,
			&r.AvgDeliveryTime, &r.TotalOrders, &r.SuccessfulDeliveries,
		); err != nil {
			return nil, fmt.Errorf("list routes: scan row: %w", err)
		}
		r.TrafficLevel = domain.TrafficLevel(traffic)
		routes = append(routes, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list routes: row iteration: %w", err)
	}

	return routes, nil
}

// Return orders ordered by order id, optionally filtered by status.
func (s *SQLFleetRepository) ListOrders(ctx context.Context, status domain.OrderStatus) (_ []domain.Order, err error) {
	defer obs.Time(ctx, "fleet.repo.ListOrders")(&err)

	if s.DB == nil {
		return nil, errors.New("sql fleet repository: DB is nil")
	}

	query := `
	SELECT
		order_id,
		customer,
		value_rs,
		route_id,
		delivery_time,
		delivery_time_minutes,
		status,
		priority,
		assigned_driver_id
	FROM orders
	WHERE (CAST(? AS TEXT) = '' OR status = ?)
	ORDER BY order_id;
	`
	rows, err := s.DB.QueryContext(ctx, s.Dialect.rebind(query), string(status), string(status))
	if err != nil {
		return nil, fmt.Errorf("list orders: query orders table: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, 64)
	for rows.Next() {
		var o domain.Order
		var st, priority string
		if err := rows.Scan(
			&o.OrderID, &o.Customer, &o.ValueRs, &o.RouteID, &o.DeliveryTime,
			&o.DeliveryTimeMinutes, &st, &priority, &o.AssignedDriverID,
		); err != nil {
			return nil, fmt.Errorf("list orders: scan row: %w", err)
		}
		o.Status = domain.OrderStatus(st)
		o.Priority = domain.OrderPriority(priority)
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: row iteration: %w", err)
	}

	return orders, nil
}
