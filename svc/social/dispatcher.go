package social

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/venuekit/venuekit/pkg/queue"
	"github.com/venuekit/venuekit/svc/provider"
)

// PublishPayload is the job payload for the social publish pipeline.
type PublishPayload struct {
	PostID    uuid.UUID           `json:"post_id"`
	Platforms []provider.Provider `json:"platforms"`
	Content   string              `json:"content"`
	MediaURLs []string            `json:"media_urls,omitempty"`
}

// Dispatcher enqueues publish jobs on the social-publish queue with its
// retry defaults.
type Dispatcher struct {
	enqueuer *queue.Enqueuer
}

func NewDispatcher(enqueuer *queue.Enqueuer) *Dispatcher {
	return &Dispatcher{enqueuer: enqueuer}
}

// EnqueuePublish schedules an immediate publish of the post.
func (d *Dispatcher) EnqueuePublish(ctx context.Context, payload PublishPayload) (uuid.UUID, error) {
	if len(payload.Platforms) == 0 {
		return uuid.Nil, ErrNoPlatforms
	}
	id, err := d.enqueuer.Enqueue(ctx, payload,
		queue.WithQueue(queue.QueueSocialPublish),
		queue.WithMaxAttempts(3),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("enqueue publish: %w", err)
	}
	return id, nil
}

// EnqueueScheduled schedules a publish to run at the post's scheduled time.
// A time in the past degrades to an immediate publish.
func (d *Dispatcher) EnqueueScheduled(ctx context.Context, payload PublishPayload, at time.Time) (uuid.UUID, error) {
	if len(payload.Platforms) == 0 {
		return uuid.Nil, ErrNoPlatforms
	}
	id, err := d.enqueuer.Enqueue(ctx, payload,
		queue.WithQueue(queue.QueueSocialPublish),
		queue.WithMaxAttempts(3),
		queue.WithScheduledAt(at),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("enqueue scheduled publish: %w", err)
	}
	return id, nil
}
