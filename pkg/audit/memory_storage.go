package audit

import (
	"context"
	"sync"
)

// MemoryStorage implements Storage and Reader in memory for tests and local
// development. Events are kept in insertion order.
type MemoryStorage struct {
	mu     sync.RWMutex
	events []Event
}

// NewMemoryStorage creates a new in-memory audit storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Store implements Storage
func (ms *MemoryStorage) Store(ctx context.Context, event Event) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.events = append(ms.events, event)
	return nil
}

// List implements Reader. Empty resource or resourceID matches everything.
func (ms *MemoryStorage) List(ctx context.Context, resource, resourceID string) ([]Event, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	out := make([]Event, 0, len(ms.events))
	for _, e := range ms.events {
		if resource != "" && e.Resource != resource {
			continue
		}
		if resourceID != "" && e.ResourceID != resourceID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
