package ports

import "context"

// Contract for announcing simulation run outcomes to other services.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload map[string]any) error
}
