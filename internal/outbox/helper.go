package outbox

import (
	"context"
	"encoding/json"
	"fmt"
)

// Insert marshals a payload and parks it under the given routing key.
func Insert(ctx context.Context, repo *Repository, aggregateType string, aggregateID *int64, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	return repo.InsertEvent(ctx, &Event{
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		RoutingKey:    routingKey,
		Payload:       body,
	})
}
