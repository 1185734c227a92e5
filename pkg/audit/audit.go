package audit

import "context"

// Logger records audit events
type Logger interface {
	// Log records a successful action
	Log(ctx context.Context, action string, opts ...EventOption) error
	// LogError records a failed action
	LogError(ctx context.Context, action string, err error, opts ...EventOption) error
}

// Storage persists audit events. The log is append-only: events are never
// updated or deleted by the pipelines.
type Storage interface {
	Store(ctx context.Context, event Event) error
}

// Reader queries stored audit events
type Reader interface {
	List(ctx context.Context, resource, resourceID string) ([]Event, error)
}
