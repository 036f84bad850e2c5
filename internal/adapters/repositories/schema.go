package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// SQL flavour of a *sql.DB. Queries are written with ? placeholders and
// rebound for Postgres.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

func (d Dialect) rebind(q string) string {
	if d != Postgres {
		return q
	}

	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, c := range q {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// Initialize the fleet and run history schema. Type names are chosen so the
// same DDL is valid for SQLite and Postgres.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createDriversQuery := `
	CREATE TABLE IF NOT EXISTS drivers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		shift_hours INTEGER NOT NULL,
		past_week_hours TEXT NOT NULL,
		status TEXT NOT NULL,
		efficiency DOUBLE PRECISION NOT NULL DEFAULT 0,
		deliveries INTEGER NOT NULL DEFAULT 0,
		total_hours_worked DOUBLE PRECISION NOT NULL DEFAULT 0,
		average_delivery_time DOUBLE PRECISION NOT NULL DEFAULT 0
	);
	`

	createRoutesQuery := `
	CREATE TABLE IF NOT EXISTS routes (
		route_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		distance_km DOUBLE PRECISION NOT NULL,
		traffic_level TEXT NOT NULL,
		base_time_min INTEGER NOT NULL,
		avg_delivery_time DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_orders INTEGER NOT NULL DEFAULT 0,
		successful_deliveries INTEGER NOT NULL DEFAULT 0
	);
	`

	createOrdersQuery := `
	CREATE TABLE IF NOT EXISTS orders (
		order_id INTEGER PRIMARY KEY,
		customer TEXT NOT NULL,
		value_rs DOUBLE PRECISION NOT NULL,
		route_id INTEGER NOT NULL,
		delivery_time TEXT NOT NULL,
		delivery_time_minutes INTEGER NOT NULL,
		status TEXT NOT NULL,
		priority TEXT NOT NULL,
		assigned_driver_id TEXT NOT NULL DEFAULT ''
	);
	`

	createRunsQuery := `
	CREATE TABLE IF NOT EXISTS simulation_runs (
		id TEXT PRIMARY KEY,
		parameters TEXT NOT NULL,
		results TEXT NOT NULL,
		execution_time_ns BIGINT NOT NULL,
		status TEXT NOT NULL,
		error_code TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT '',
		created_at_unix_ns BIGINT NOT NULL
	);
	`

	createRunsIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_simulation_runs_status_created
	ON simulation_runs(status, created_at_unix_ns);
	`

	statements := []string{
		createDriversQuery,
		createRoutesQuery,
		createOrdersQuery,
		createRunsQuery,
		createRunsIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
