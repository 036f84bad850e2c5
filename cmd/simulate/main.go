// Command simulate runs the parameter sets of a YAML scenario against its
// fleet snapshot and prints one JSON line per run.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fleet-simulation-service/internal/adapters/repositories"
	"fleet-simulation-service/internal/adapters/scenario"
	"fleet-simulation-service/internal/services"
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

func main() {
	path := flag.String("scenario", "data/scenarios/rush_hour.yaml", "scenario YAML file")
	timeout := flag.Duration("timeout", services.DefaultSimulationTimeout, "per-run evaluation timeout")
	flag.Parse()

	if err := run(context.Background(), *path, *timeout, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, path string, timeout time.Duration, w io.Writer) error {
	sc, err := scenario.Load(path)
	if err != nil {
		return err
	}

	repo := repositories.NewMemoryRepository(sc.Fleet)
	svc := services.NewSimulationService(repo, repo, nil, nil, services.SimulationServiceConfig{Timeout: timeout})

	items, err := svc.RunBatch(ctx, sc.Params)
	if err != nil {
		return fmt.Errorf("simulate %q: %w", sc.Name, err)
	}

	enc := json.NewEncoder(w)
	for i, item := range items {
		line := map[string]any{"scenario": sc.Name, "index": i}
		switch {
		case item.Err != nil && item.Outcome.Run.ID == "":
			line["errorCode"] = string(services.KindOf(item.Err))
			line["errorMessage"] = item.Err.Error()
		default:
			for k, v := range services.RunEventPayload(item.Outcome.Run) {
				line[k] = v
			}
			line["skippedOrderIds"] = item.Outcome.SkippedOrderIDs
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("simulate %q: write result %d: %w", sc.Name, i, err)
		}
	}
	return nil
}
