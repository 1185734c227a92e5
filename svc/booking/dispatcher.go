package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/venuekit/venuekit/pkg/queue"
)

// HoldExpiryPayload is the job payload for the hold expiry pipeline.
type HoldExpiryPayload struct {
	RequestID uuid.UUID `json:"request_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Dispatcher enqueues hold expiry jobs on the hold-expiry queue.
type Dispatcher struct {
	enqueuer *queue.Enqueuer
}

func NewDispatcher(enqueuer *queue.Enqueuer) *Dispatcher {
	return &Dispatcher{enqueuer: enqueuer}
}

// EnqueueHoldExpiry schedules the expiry check for when the hold runs out.
// The handler is idempotent, so the job gets a single attempt; a re-check
// that fires early or late is still safe.
func (d *Dispatcher) EnqueueHoldExpiry(ctx context.Context, requestID uuid.UUID, expiresAt time.Time) (uuid.UUID, error) {
	id, err := d.enqueuer.Enqueue(ctx,
		HoldExpiryPayload{RequestID: requestID, ExpiresAt: expiresAt},
		queue.WithQueue(queue.QueueHoldExpiry),
		queue.WithMaxAttempts(1),
		queue.WithScheduledAt(expiresAt),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("enqueue hold expiry: %w", err)
	}
	return id, nil
}
