package services

import (
	"errors"
	"fleet-simulation-service/internal/domain"
)

// Stable failure codes reported to callers.
type ErrorKind string

const (
	KindInsufficientDrivers ErrorKind = "INSUFFICIENT_DRIVERS"
	KindNoDataAvailable     ErrorKind = "NO_DATA_AVAILABLE"
	KindRouteNotFound       ErrorKind = "ROUTE_NOT_FOUND"
	KindInternalEvaluation  ErrorKind = "SIMULATION_ERROR"
	KindTimeout             ErrorKind = "SIMULATION_TIMEOUT"
)

var kindSentinels = map[ErrorKind]error{
	KindInsufficientDrivers: domain.ErrInsufficientDrivers,
	KindNoDataAvailable:     domain.ErrNoDataAvailable,
	KindRouteNotFound:       domain.ErrRouteNotFound,
	KindInternalEvaluation:  domain.ErrInternalEvaluation,
	KindTimeout:             domain.ErrSimulationTimeout,
}

// SimulationError is the typed failure of a simulation run.
// It unwraps to the domain sentinel of its kind and to the underlying cause.
type SimulationError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *SimulationError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *SimulationError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s, ok := kindSentinels[e.Kind]; ok {
		errs = append(errs, s)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Fatal errors happen after evaluation started and must leave a failed run record.
// Precondition errors are reported without one.
func (e *SimulationError) Fatal() bool {
	return e.Kind == KindInternalEvaluation || e.Kind == KindTimeout
}

// KindOf returns the kind of a SimulationError anywhere in err's chain, or "".
func KindOf(err error) ErrorKind {
	var se *SimulationError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

func newSimulationError(kind ErrorKind, msg string, cause error) *SimulationError {
	return &SimulationError{Kind: kind, Message: msg, Cause: cause}
}
