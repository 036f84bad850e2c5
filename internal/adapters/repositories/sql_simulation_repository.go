package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fleet-simulation-service/internal/domain"
	"fleet-simulation-service/internal/platform/obs"
	"fmt"
	"time"
)

type runParamsRecord struct {
	DriverCount       int    `json:"driverCount"`
	StartTime         string `json:"startTime"`
	MaxHours          int    `json:"maxHours"`
	RouteOptimization bool   `json:"routeOptimization"`
	FuelEfficiency    int    `json:"fuelEfficiency"`
	WeatherCondition  string `json:"weatherCondition"`
}

type runKPIsRecord struct {
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

// SQL-backed implementation of the SimulationRepository port.
// Parameters and results are stored as JSON text columns.
type SQLSimulationRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLSimulationRepository(db *sql.DB, dialect Dialect) *SQLSimulationRepository {
	return &SQLSimulationRepository{DB: db, Dialect: dialect}
}

func (s *SQLSimulationRepository) SaveRun(ctx context.Context, run domain.SimulationRun) (err error) {
	defer obs.Time(ctx, "simulation.repo.SaveRun")(&err)

	if s.DB == nil {
		return errors.New("sql simulation repository: DB is nil")
	}
	if run.ID == "" {
		return errors.New("save run: id must not be empty")
	}

	params, err := json.Marshal(paramsToRecord(run.Parameters))
	if err != nil {
		return fmt.Errorf("save run %s: encode parameters: %w", run.ID, err)
	}
	results, err := json.Marshal(kpisToRecord(run.Results))
	if err != nil {
		return fmt.Errorf("save run %s: encode results: %w", run.ID, err)
	}

	query := `
	INSERT INTO simulation_runs (
		id,
		parameters,
		results,
		execution_time_ns,
		status,
		error_code,
		error_message,
		created_at_unix_ns
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`
	if _, err := s.DB.ExecContext(ctx, s.Dialect.rebind(query),
		run.ID, string(params), string(results), run.ExecutionTime.Nanoseconds(),
		string(run.Status), run.ErrorCode, run.ErrorMessage, run.CreatedAt.UnixNano(),
	); err != nil {
		return fmt.Errorf("save run %s: insert: %w", run.ID, err)
	}

	return nil
}

// Return domain.ErrNotFound when no run has the given id.
func (s *SQLSimulationRepository) GetRun(ctx context.Context, id string) (_ domain.SimulationRun, err error) {
	defer obs.Time(ctx, "simulation.repo.GetRun")(&err)

	if s.DB == nil {
		return domain.SimulationRun{}, errors.New("sql simulation repository: DB is nil")
	}

	query := `
	SELECT id, parameters, results, execution_time_ns, status, error_code, error_message, created_at_unix_ns
	FROM simulation_runs
	WHERE id = ?;
	`
	run, err := scanRun(s.DB.QueryRowContext(ctx, s.Dialect.rebind(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SimulationRun{}, fmt.Errorf("get run %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.SimulationRun{}, fmt.Errorf("get run %s: %w", id, err)
	}

	return run, nil
}

// List runs newest first with the total count matching the status filter.
func (s *SQLSimulationRepository) ListRuns(ctx context.Context, filter domain.RunFilter) (_ []domain.SimulationRun, _ int, err error) {
	defer obs.Time(ctx, "simulation.repo.ListRuns")(&err)

	if s.DB == nil {
		return nil, 0, errors.New("sql simulation repository: DB is nil")
	}

	filter = filter.Normalized()
	status := string(filter.Status)

	countQuery := `
	SELECT COUNT(*)
	FROM simulation_runs
	WHERE (CAST(? AS TEXT) = '' OR status = ?);
	`
	var total int
	if err := s.DB.QueryRowContext(ctx, s.Dialect.rebind(countQuery), status, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("list runs: count: %w", err)
	}

	query := `
	SELECT id, parameters, results, execution_time_ns, status, error_code, error_message, created_at_unix_ns
	FROM simulation_runs
	WHERE (CAST(? AS TEXT) = '' OR status = ?)
	ORDER BY created_at_unix_ns DESC, id DESC
	LIMIT ? OFFSET ?;
	`
	rows, err := s.DB.QueryContext(ctx, s.Dialect.rebind(query), status, status, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list runs: query simulation_runs table: %w", err)
	}
	defer rows.Close()

	runs := make([]domain.SimulationRun, 0, filter.Limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list runs: row iteration: %w", err)
	}

	return runs, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (domain.SimulationRun, error) {
	var (
		run             domain.SimulationRun
		params, results string
		execNs, created int64
		status          string
	)
	if err := row.Scan(&run.ID, &params, &results, &execNs, &status, &run.ErrorCode, &run.ErrorMessage, &created); err != nil {
		return domain.SimulationRun{}, err
	}

	var p runParamsRecord
	if err := json.Unmarshal([]byte(params), &p); err != nil {
		return domain.SimulationRun{}, fmt.Errorf("decode parameters of %s: %w", run.ID, err)
	}
	var k runKPIsRecord
	if err := json.Unmarshal([]byte(results), &k); err != nil {
		return domain.SimulationRun{}, fmt.Errorf("decode results of %s: %w", run.ID, err)
	}

	run.Parameters = p.domain()
	run.Results = k.domain()
	run.ExecutionTime = time.Duration(execNs)
	run.Status = domain.RunStatus(status)
	run.CreatedAt = time.Unix(0, created).UTC()

	return run, nil
}

func paramsToRecord(p domain.SimulationParameters) runParamsRecord {
	return runParamsRecord{
		DriverCount:       p.DriverCount,
		StartTime:         p.StartTime,
		MaxHours:          p.MaxHours,
		RouteOptimization: p.RouteOptimization,
		FuelEfficiency:    p.FuelEfficiency,
		WeatherCondition:  string(p.WeatherCondition),
	}
}

func (r runParamsRecord) domain() domain.SimulationParameters {
	return domain.SimulationParameters{
		DriverCount:       r.DriverCount,
		StartTime:         r.StartTime,
		MaxHours:          r.MaxHours,
		RouteOptimization: r.RouteOptimization,
		FuelEfficiency:    r.FuelEfficiency,
		WeatherCondition:  domain.WeatherCondition(r.WeatherCondition),
	}
}

func kpisToRecord(k domain.KPIs) runKPIsRecord {
	return runKPIsRecord(k)
}

func (r runKPIsRecord) domain() domain.KPIs {
	return domain.KPIs(r)
}
