package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrRouteNotFound       = errors.New("route not found")
	ErrInsufficientDrivers = errors.New("insufficient drivers")
	ErrNoDataAvailable     = errors.New("no routes or orders available for simulation")
	ErrInternalEvaluation  = errors.New("simulation failed")
	ErrSimulationTimeout   = errors.New("simulation timed out")
)
