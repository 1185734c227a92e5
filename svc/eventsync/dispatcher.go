package eventsync

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/venuekit/venuekit/pkg/queue"
)

// SyncPayload is the job payload for the event sync pipeline.
type SyncPayload struct {
	EventSyncID uuid.UUID `json:"event_sync_id"`
	Direction   Direction `json:"direction"`
	ForceUpdate bool      `json:"force_update,omitempty"`
}

// Dispatcher enqueues sync jobs on the event-sync queue with its retry
// defaults.
type Dispatcher struct {
	enqueuer *queue.Enqueuer
}

func NewDispatcher(enqueuer *queue.Enqueuer) *Dispatcher {
	return &Dispatcher{enqueuer: enqueuer}
}

// EnqueueSync schedules a sync run for the record.
func (d *Dispatcher) EnqueueSync(ctx context.Context, payload SyncPayload) (uuid.UUID, error) {
	if payload.Direction == "" {
		payload.Direction = DirectionExport
	}
	id, err := d.enqueuer.Enqueue(ctx, payload,
		queue.WithQueue(queue.QueueEventSync),
		queue.WithMaxAttempts(3),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("enqueue event sync: %w", err)
	}
	return id, nil
}
