package events

import (
	"context"
	"fleet-simulation-service/internal/platform/obs"
	"log"
	"time"
)

// LogPublisher writes events to the process log. Used when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, routingKey string, payload map[string]any) error {
	body, err := encodeEvent(routingKey, payload, time.Now())
	if err != nil {
		return err
	}
	log.Printf("req_id=%s event=%s body=%s", obs.RequestID(ctx), routingKey, body)
	return nil
}
