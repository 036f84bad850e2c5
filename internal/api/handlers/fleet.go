package handlers

import (
	"fleet-simulation-service/internal/api/dto"
	"fleet-simulation-service/internal/domain"
	"fleet-simulation-service/internal/ports"
	"log"
	"net/http"
)

// FleetHandler exposes read-only driver, route and order endpoints.
type FleetHandler struct {
	Repo ports.FleetRepository
}

func (h *FleetHandler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	status := domain.DriverStatus(r.URL.Query().Get("status"))
	if status != "" && !domain.ValidDriverStatus(status) {
		writeError(w, r, http.StatusBadRequest, "status must be one of Active, Off-duty, On-break")
		return
	}

	drivers, err := h.Repo.ListDrivers(r.Context(), status)
	if err != nil {
		log.Printf("list drivers failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListDriversResponse{Drivers: make([]dto.DriverResponse, 0, len(drivers))}
	for _, d := range drivers {
		res.Drivers = append(res.Drivers, dto.DriverResponse{
			ID:                 d.ID,
			Name:               d.Name,
			ShiftHours:         d.ShiftHours,
			PastWeekHours:      d.PastWeekHours[:],
			Status:             string(d.Status),
			Efficiency:         d.Efficiency,
			Deliveries:         d.Deliveries,
			IsFatigued:         domain.IsFatigued(d),
			AverageWeeklyHours: domain.AverageWeeklyHours(d),
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *FleetHandler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.Repo.ListRoutes(r.Context())
	if err != nil {
		log.Printf("list routes failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListRoutesResponse{Routes: make([]dto.RouteResponse, 0, len(routes))}
	for _, rt := range routes {
		res.Routes = append(res.Routes, routeResponse(rt))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// ListOrders returns orders with their standalone economics evaluated
// against the current routes.
func (h *FleetHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	status := domain.OrderStatus(r.URL.Query().Get("status"))
	if status != "" && !domain.ValidOrderStatus(status) {
		writeError(w, r, http.StatusBadRequest, "status must be one of Pending, In Transit, Delivered, Cancelled")
		return
	}

	orders, err := h.Repo.ListOrders(r.Context(), status)
	if err != nil {
		log.Printf("list orders failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	routes, err := h.Repo.ListRoutes(r.Context())
	if err != nil {
		log.Printf("list orders failed: list routes: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	idx := domain.RouteIndex(routes)

	res := dto.ListOrdersResponse{Orders: make([]dto.OrderResponse, 0, len(orders))}
	for _, o := range orders {
		item := dto.OrderResponse{
			OrderID:             o.OrderID,
			Customer:            o.Customer,
			ValueRs:             o.ValueRs,
			RouteID:             o.RouteID,
			DeliveryTime:        o.DeliveryTime,
			DeliveryTimeMinutes: o.DeliveryTimeMinutes,
			Status:              string(o.Status),
			Priority:            string(o.Priority),
			AssignedDriverID:    o.AssignedDriverID,
		}

		if econ, err := domain.EvaluateOrder(o, idx); err == nil {
			evaluated := domain.ApplyEconomics(o, econ)
			item.IsOnTime = evaluated.IsOnTime
			item.Penalty = &evaluated.Penalty
			item.Bonus = &evaluated.Bonus
			item.Profit = &evaluated.Profit
		}

		res.Orders = append(res.Orders, item)
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *FleetHandler) DriverStats(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.Repo.ListDrivers(r.Context(), "")
	if err != nil {
		log.Printf("driver stats failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	s := domain.SummarizeDrivers(drivers)
	writeJSON(w, r, http.StatusOK, dto.DriverStatsResponse{
		TotalDrivers:      s.TotalDrivers,
		ActiveDrivers:     s.ActiveDrivers,
		OffDutyDrivers:    s.OffDutyDrivers,
		FatiguedDrivers:   s.FatiguedDrivers,
		AverageEfficiency: s.AverageEfficiency,
	})
}

func (h *FleetHandler) RouteStats(w http.ResponseWriter, r *http.Request) {
	routes, err := h.Repo.ListRoutes(r.Context())
	if err != nil {
		log.Printf("route stats failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	s := domain.SummarizeRoutes(routes)
	byTraffic := make(map[string]int, len(s.ByTrafficLevel))
	for k, v := range s.ByTrafficLevel {
		byTraffic[string(k)] = v
	}

	writeJSON(w, r, http.StatusOK, dto.RouteStatsResponse{
		TotalRoutes:       s.TotalRoutes,
		ByTrafficLevel:    byTraffic,
		AverageDistanceKm: s.AverageDistanceKm,
	})
}

func (h *FleetHandler) OrderStats(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Repo.ListOrders(r.Context(), "")
	if err != nil {
		log.Printf("order stats failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	s := domain.SummarizeOrders(orders)
	byStatus := make(map[string]int, len(s.ByStatus))
	for k, v := range s.ByStatus {
		byStatus[string(k)] = v
	}

	writeJSON(w, r, http.StatusOK, dto.OrderStatsResponse{
		TotalOrders:  s.TotalOrders,
		ByStatus:     byStatus,
		TotalValueRs: s.TotalValueRs,
	})
}

func routeResponse(rt domain.Route) dto.RouteResponse {
	return dto.RouteResponse{
		RouteID:         rt.RouteID,
		Name:            rt.Name,
		DistanceKm:      rt.DistanceKm,
		TrafficLevel:    string(rt.TrafficLevel),
		BaseTimeMin:     rt.BaseTimeMin,
		FuelCost:        domain.FuelCost(rt),
		AvgDeliveryTime: domain.EffectiveAvgDeliveryTime(rt),
		SuccessRate:     domain.SuccessRate(rt),
	}
}
