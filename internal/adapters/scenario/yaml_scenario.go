package scenario

import (
	"bytes"
	"errors"
	"fleet-simulation-service/internal/adapters/repositories"
	"fleet-simulation-service/internal/domain"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type paramsDoc struct {
	Drivers           int    `yaml:"drivers"`
	StartTime         string `yaml:"start_time"`
	MaxHours          int    `yaml:"max_hours"`
	RouteOptimization *bool  `yaml:"route_optimization"`
	FuelEfficiency    int    `yaml:"fuel_efficiency"`
	WeatherCondition  string `yaml:"weather_condition"`
}

type scenarioDoc struct {
	Name     string                  `yaml:"name"`
	SeedPath string                  `yaml:"seed_path"`
	Fleet    *repositories.FleetSeed `yaml:"fleet"`
	Runs     []paramsDoc             `yaml:"runs"`
}

// Scenario is a fleet snapshot plus the parameter sets to simulate on it.
type Scenario struct {
	Name   string
	Fleet  repositories.FleetData
	Params []domain.SimulationParameters
}

// Load reads a YAML scenario. The fleet is either inline under "fleet" or in
// the JSON seed file named by "seed_path", resolved relative to the scenario.
func Load(path string) (Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("load scenario: read %q: %w", path, err)
	}

	sc, err := Parse(b, filepath.Dir(path))
	if err != nil {
		return Scenario{}, fmt.Errorf("load scenario %q: %w", path, err)
	}
	return sc, nil
}

func Parse(b []byte, baseDir string) (Scenario, error) {
	var doc scenarioDoc
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return Scenario{}, fmt.Errorf("parse yaml: %w", err)
	}

	sc := Scenario{Name: doc.Name}

	switch {
	case doc.Fleet != nil && doc.SeedPath != "":
		return Scenario{}, errors.New("fleet and seed_path are mutually exclusive")
	case doc.Fleet != nil:
		data, err := doc.Fleet.Domain()
		if err != nil {
			return Scenario{}, fmt.Errorf("fleet: %w", err)
		}
		sc.Fleet = data
	case doc.SeedPath != "":
		p := doc.SeedPath
		if !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, p)
		}
		data, err := repositories.LoadFleetSeed(p)
		if err != nil {
			return Scenario{}, err
		}
		sc.Fleet = data
	default:
		return Scenario{}, errors.New("one of fleet or seed_path is required")
	}

	if len(doc.Runs) == 0 {
		return Scenario{}, errors.New("at least one run is required")
	}
	for i, r := range doc.Runs {
		p := r.domain()
		if err := p.Validate(); err != nil {
			return Scenario{}, fmt.Errorf("run #%d: %w", i+1, err)
		}
		sc.Params = append(sc.Params, p)
	}

	return sc, nil
}

func (d paramsDoc) domain() domain.SimulationParameters {
	opt := true
	if d.RouteOptimization != nil {
		opt = *d.RouteOptimization
	}

	return domain.SimulationParameters{
		DriverCount:       d.Drivers,
		StartTime:         d.StartTime,
		MaxHours:          d.MaxHours,
		RouteOptimization: opt,
		FuelEfficiency:    d.FuelEfficiency,
		WeatherCondition:  domain.WeatherCondition(d.WeatherCondition),
	}.WithDefaults()
}
