package handlers

import (
	"context"
	"errors"
	"fleet-simulation-service/internal/api/dto"
	"fleet-simulation-service/internal/domain"
	"fleet-simulation-service/internal/services"
	"fmt"
	"log"
	"net/http"
	"strconv"
)

const maxBatchRuns = 20

// SimulationRunner is the part of services.SimulationService the handlers use.
type SimulationRunner interface {
	Run(ctx context.Context, params domain.SimulationParameters) (services.RunOutcome, error)
	RunBatch(ctx context.Context, params []domain.SimulationParameters) ([]services.BatchItem, error)
	GetRun(ctx context.Context, id string) (domain.SimulationRun, error)
	ListRuns(ctx context.Context, filter domain.RunFilter) ([]domain.SimulationRun, int, error)
}

type SimulationHandler struct {
	Service SimulationRunner
}

// Run validates the parameter set, runs one simulation and returns the stored run.
func (h *SimulationHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req dto.SimulationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	params, err := paramsFromRequest(req)
	if err != nil {
		writeErrorCode(w, r, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Code: "VALIDATION_ERROR"})
		return
	}

	out, err := h.Service.Run(r.Context(), params)
	if err != nil {
		status, resp := simulationErrorResponse(err, out.Run.ID)
		if status == http.StatusInternalServerError {
			log.Printf("simulation failed: run_id=%s err=%v", out.Run.ID, err)
		}
		writeErrorCode(w, r, status, resp)
		return
	}

	writeJSON(w, r, http.StatusOK, simulationResponse(out))
}

// RunBatch runs up to maxBatchRuns parameter sets over one fleet snapshot.
// Each element reports its own result or error; the response is 200 unless
// the request itself is invalid or the snapshot cannot be loaded.
func (h *SimulationHandler) RunBatch(w http.ResponseWriter, r *http.Request) {
	var req dto.BatchSimulationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if len(req.Runs) == 0 || len(req.Runs) > maxBatchRuns {
		writeErrorCode(w, r, http.StatusBadRequest, dto.ErrorResponse{
			Error: fmt.Sprintf("runs must contain between 1 and %d parameter sets", maxBatchRuns),
			Code:  "VALIDATION_ERROR",
		})
		return
	}

	params := make([]domain.SimulationParameters, 0, len(req.Runs))
	for i, item := range req.Runs {
		p, err := paramsFromRequest(item)
		if err != nil {
			writeErrorCode(w, r, http.StatusBadRequest, dto.ErrorResponse{
				Error: fmt.Sprintf("runs[%d]: %v", i, err),
				Code:  "VALIDATION_ERROR",
			})
			return
		}
		params = append(params, p)
	}

	items, err := h.Service.RunBatch(r.Context(), params)
	if err != nil {
		log.Printf("simulation batch failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.BatchSimulationResponse{Results: make([]dto.BatchItemResponse, 0, len(items))}
	for _, item := range items {
		if item.Err != nil {
			_, e := simulationErrorResponse(item.Err, item.Outcome.Run.ID)
			res.Results = append(res.Results, dto.BatchItemResponse{Error: &e})
			continue
		}
		sim := simulationResponse(item.Outcome)
		res.Results = append(res.Results, dto.BatchItemResponse{Simulation: &sim})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *SimulationHandler) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := domain.RunFilter{Status: domain.RunStatus(q.Get("status"))}
	if filter.Status != "" && !domain.ValidRunStatus(filter.Status) {
		writeError(w, r, http.StatusBadRequest, "status must be one of completed, failed, in_progress")
		return
	}

	var err error
	if filter.Limit, err = intQuery(q.Get("limit")); err != nil {
		writeError(w, r, http.StatusBadRequest, "limit must be an integer")
		return
	}
	if filter.Offset, err = intQuery(q.Get("offset")); err != nil {
		writeError(w, r, http.StatusBadRequest, "offset must be an integer")
		return
	}
	filter = filter.Normalized()

	runs, total, err := h.Service.ListRuns(r.Context(), filter)
	if err != nil {
		log.Printf("list simulation runs failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListRunsResponse{
		Runs:       make([]dto.RunResponse, 0, len(runs)),
		Pagination: dto.Pagination{Total: total, Limit: filter.Limit, Offset: filter.Offset},
	}
	for _, run := range runs {
		res.Runs = append(res.Runs, runResponse(run))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *SimulationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	run, err := h.Service.GetRun(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeErrorCode(w, r, http.StatusNotFound, dto.ErrorResponse{Error: "simulation not found", Code: "SIMULATION_NOT_FOUND"})
		return
	}
	if err != nil {
		log.Printf("get simulation run failed: id=%s err=%v", id, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, runResponse(run))
}

func paramsFromRequest(req dto.SimulationRequest) (domain.SimulationParameters, error) {
	if req.Drivers == nil {
		return domain.SimulationParameters{}, errors.New("drivers is required")
	}
	if req.StartTime == "" {
		return domain.SimulationParameters{}, errors.New("startTime is required")
	}
	if req.MaxHours == nil {
		return domain.SimulationParameters{}, errors.New("maxHours is required")
	}

	p := domain.SimulationParameters{
		DriverCount:       *req.Drivers,
		StartTime:         req.StartTime,
		MaxHours:          *req.MaxHours,
		RouteOptimization: true,
		FuelEfficiency:    domain.DefaultFuelEfficiency,
		WeatherCondition:  domain.WeatherCondition(req.WeatherCondition),
	}
	if req.RouteOptimization != nil {
		p.RouteOptimization = *req.RouteOptimization
	}
	if req.FuelEfficiency != nil {
		p.FuelEfficiency = *req.FuelEfficiency
	}
	// An explicit fuelEfficiency of 0 must fail validation, not fall back to the default.
	if p.WeatherCondition == "" {
		p.WeatherCondition = domain.DefaultWeather
	}

	if err := p.Validate(); err != nil {
		return domain.SimulationParameters{}, err
	}
	return p, nil
}

// Map a run error to its HTTP status and body. Precondition failures are
// client errors; fatal failures carry the id of the stored failed run.
func simulationErrorResponse(err error, runID string) (int, dto.ErrorResponse) {
	var se *services.SimulationError
	if !errors.As(err, &se) {
		return http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"}
	}

	resp := dto.ErrorResponse{Error: se.Message, Code: string(se.Kind)}
	if se.Fatal() {
		resp.RunID = runID
		return http.StatusInternalServerError, resp
	}
	return http.StatusBadRequest, resp
}

func intQuery(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func runResponse(run domain.SimulationRun) dto.RunResponse {
	k := run.Results
	p := run.Parameters

	return dto.RunResponse{
		ID: run.ID,
		Parameters: dto.ParametersResponse{
			Drivers:           p.DriverCount,
			StartTime:         p.StartTime,
			MaxHours:          p.MaxHours,
			RouteOptimization: p.RouteOptimization,
			FuelEfficiency:    p.FuelEfficiency,
			WeatherCondition:  string(p.WeatherCondition),
		},
		Results: dto.KPIsResponse{
			TotalProfit:      k.TotalProfit,
			EfficiencyScore:  k.EfficiencyScore,
			OnTimeDeliveries: k.OnTimeDeliveries,
			LateDeliveries:   k.LateDeliveries,
			TotalFuelCost:    k.TotalFuelCost,
			AvgDeliveryTime:  k.AvgDeliveryTime,
			TotalOrders:      k.TotalOrders,
			TotalPenalties:   k.TotalPenalties,
			TotalBonuses:     k.TotalBonuses,
		},
		ExecutionTimeMs: float64(run.ExecutionTime.Microseconds()) / 1000,
		Status:          string(run.Status),
		ErrorCode:       run.ErrorCode,
		ErrorMessage:    run.ErrorMessage,
		CreatedAt:       run.CreatedAt,
	}
}

func simulationResponse(out services.RunOutcome) dto.SimulationResponse {
	res := dto.SimulationResponse{
		Run:             runResponse(out.Run),
		SkippedOrderIDs: out.SkippedOrderIDs,
		Cached:          out.Cached,
	}
	for _, o := range out.Orders {
		res.Orders = append(res.Orders, dto.OrderOutcomeResponse{
			OrderID:                 o.OrderID,
			RouteID:                 o.RouteID,
			DeliveryTimeMinutes:     o.DeliveryTimeMinutes,
			IsOnTime:                o.IsOnTime,
			Penalty:                 o.Penalty,
			Bonus:                   o.Bonus,
			FuelCost:                o.FuelCost,
			Profit:                  o.Profit,
			WeatherAdjustedBaseTime: o.WeatherAdjustedBaseTime,
		})
	}
	return res
}
