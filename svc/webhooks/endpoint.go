package webhooks

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Endpoint is a subscriber's registered webhook destination.
type Endpoint struct {
	ID         uuid.UUID
	BusinessID string
	URL        string
	Secret     string
	Events     []string
	Active     bool
	CreatedAt  time.Time
}

// DeliveryStatus is the outcome of one delivery attempt.
type DeliveryStatus string

const (
	DeliverySuccess DeliveryStatus = "SUCCESS"
	DeliveryFailed  DeliveryStatus = "FAILED"
)

// Delivery is one attempted HTTP transmission of a webhook payload. Every
// attempt appends its own row, including engine-driven retries, so the log
// is an append-only audit trail rather than a single status field.
type Delivery struct {
	ID           uuid.UUID
	EndpointID   uuid.UUID
	JobID        uuid.UUID
	Event        string
	Status       DeliveryStatus
	StatusCode   int
	ResponseBody string
	Error        string
	AttemptedAt  time.Time
}

// EndpointStore reads registered endpoints.
type EndpointStore interface {
	GetEndpoint(ctx context.Context, id uuid.UUID) (Endpoint, error)
}

// DeliveryStore appends and lists delivery rows.
type DeliveryStore interface {
	AppendDelivery(ctx context.Context, d Delivery) error
	ListDeliveries(ctx context.Context, endpointID uuid.UUID) ([]Delivery, error)
}

// MemoryStore is an in-memory EndpointStore and DeliveryStore for tests and
// local runs.
type MemoryStore struct {
	mu         sync.RWMutex
	endpoints  map[uuid.UUID]Endpoint
	deliveries []Delivery
}

func NewMemoryStore(endpoints ...Endpoint) *MemoryStore {
	m := make(map[uuid.UUID]Endpoint, len(endpoints))
	for _, e := range endpoints {
		m[e.ID] = e
	}
	return &MemoryStore{endpoints: m}
}

func (s *MemoryStore) GetEndpoint(ctx context.Context, id uuid.UUID) (Endpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.endpoints[id]
	if !ok {
		return Endpoint{}, ErrEndpointNotFound
	}
	return e, nil
}

// PutEndpoint inserts or replaces an endpoint. Intended for test setup.
func (s *MemoryStore) PutEndpoint(e Endpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endpoints[e.ID] = e
}

func (s *MemoryStore) AppendDelivery(ctx context.Context, d Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deliveries = append(s.deliveries, d)
	return nil
}

func (s *MemoryStore) ListDeliveries(ctx context.Context, endpointID uuid.UUID) ([]Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Delivery
	for _, d := range s.deliveries {
		if d.EndpointID == endpointID {
			out = append(out, d)
		}
	}
	return out, nil
}

// SubscribedTo reports whether the endpoint wants the event. An empty event
// list subscribes to everything.
func (e Endpoint) SubscribedTo(event string) bool {
	return len(e.Events) == 0 || slices.Contains(e.Events, event)
}
