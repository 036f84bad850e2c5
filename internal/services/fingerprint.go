package services

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fleet-simulation-service/internal/domain"
	"fmt"
)

type fingerprintInput struct {
	Parameters domain.SimulationParameters
	Drivers    []domain.Driver
	Routes     []domain.Route
	Orders     []domain.Order
}

// Fingerprint identifies a simulation input snapshot. Equal fingerprints
// produce equal KPIs because the engine is deterministic.
func Fingerprint(
	params domain.SimulationParameters,
	drivers []domain.Driver,
	routes []domain.Route,
	orders []domain.Order,
) (string, error) {
	b, err := json.Marshal(fingerprintInput{
		Parameters: params,
		Drivers:    drivers,
		Routes:     routes,
		Orders:     orders,
	})
	if err != nil {
		return "", fmt.Errorf("fingerprint: encode snapshot: %w", err)
	}

	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
