package webhooks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/venuekit/venuekit/pkg/queue"
)

// DeliveryPayload is the job payload for the webhook delivery pipeline.
// Data is the raw JSON document that will be signed and posted.
type DeliveryPayload struct {
	EndpointID uuid.UUID       `json:"endpoint_id"`
	Event      string          `json:"event"`
	Data       json.RawMessage `json:"data"`
}

// Dispatcher enqueues delivery jobs on the webhook-delivery queue with its
// retry defaults.
type Dispatcher struct {
	enqueuer *queue.Enqueuer
}

func NewDispatcher(enqueuer *queue.Enqueuer) *Dispatcher {
	return &Dispatcher{enqueuer: enqueuer}
}

// EnqueueDelivery schedules a webhook delivery. Each engine attempt produces
// its own delivery row.
func (d *Dispatcher) EnqueueDelivery(ctx context.Context, payload DeliveryPayload) (uuid.UUID, error) {
	id, err := d.enqueuer.Enqueue(ctx, payload,
		queue.WithQueue(queue.QueueWebhookDelivery),
		queue.WithMaxAttempts(5),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("enqueue webhook delivery: %w", err)
	}
	return id, nil
}
