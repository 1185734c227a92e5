package queue

import (
	"context"

	"github.com/google/uuid"
)

type jobIDContextKey struct{}

func withJobID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, jobIDContextKey{}, id)
}

// JobIDFromContext returns the id of the job a handler is currently
// executing. Handlers use it to tag external side effects (e.g. the
// X-Webhook-Delivery header) with the job that produced them.
func JobIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(jobIDContextKey{}).(uuid.UUID)
	return id, ok
}
