package booking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/venuekit/venuekit/pkg/statemachine"
)

// RequestStatus represents the lifecycle state of a space booking request.
type RequestStatus string

const (
	StatusPending      RequestStatus = "pending"
	StatusNeedsPayment RequestStatus = "needs_payment"
	StatusPaidHold     RequestStatus = "paid_hold"
	StatusConfirmed    RequestStatus = "confirmed"
	StatusDeclined     RequestStatus = "declined"
	StatusExpired      RequestStatus = "expired"
	StatusCancelled    RequestStatus = "cancelled"
)

// Booking lifecycle events. The expiry pipeline owns only EventHoldExpire;
// the rest are fired by the booking surface.
const (
	EventApprove    = "approve"
	EventDecline    = "decline"
	EventPay        = "pay"
	EventConfirm    = "confirm"
	EventCancel     = "cancel"
	EventHoldExpire = "hold_expire"
)

// NewRequestMachine builds the booking request transition table.
func NewRequestMachine() *statemachine.Machine[RequestStatus] {
	return statemachine.New(
		statemachine.Transition[RequestStatus]{From: StatusPending, To: StatusNeedsPayment, Event: EventApprove},
		statemachine.Transition[RequestStatus]{From: StatusPending, To: StatusDeclined, Event: EventDecline},
		statemachine.Transition[RequestStatus]{From: StatusPending, To: StatusCancelled, Event: EventCancel},
		statemachine.Transition[RequestStatus]{From: StatusNeedsPayment, To: StatusPaidHold, Event: EventPay},
		statemachine.Transition[RequestStatus]{From: StatusNeedsPayment, To: StatusCancelled, Event: EventCancel},
		statemachine.Transition[RequestStatus]{From: StatusNeedsPayment, To: StatusExpired, Event: EventHoldExpire},
		statemachine.Transition[RequestStatus]{From: StatusPaidHold, To: StatusConfirmed, Event: EventConfirm},
		statemachine.Transition[RequestStatus]{From: StatusPaidHold, To: StatusCancelled, Event: EventCancel},
	)
}

// SpaceRequest is a guest's request to book a space. Entering needs_payment
// starts a payment hold bounded by HoldExpiresAt.
type SpaceRequest struct {
	ID            uuid.UUID
	BusinessID    string
	SpaceID       uuid.UUID
	GuestID       string
	Status        RequestStatus
	HoldExpiresAt *time.Time
	UpdatedAt     time.Time
}

// RequestStore reads and updates booking requests.
type RequestStore interface {
	GetRequest(ctx context.Context, id uuid.UUID) (SpaceRequest, error)
	UpdateRequest(ctx context.Context, request SpaceRequest) error
}

// MemoryRequestStore is an in-memory RequestStore for tests and local runs.
type MemoryRequestStore struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]SpaceRequest
}

func NewMemoryRequestStore(requests ...SpaceRequest) *MemoryRequestStore {
	m := make(map[uuid.UUID]SpaceRequest, len(requests))
	for _, r := range requests {
		m[r.ID] = r
	}
	return &MemoryRequestStore{requests: m}
}

func (s *MemoryRequestStore) GetRequest(ctx context.Context, id uuid.UUID) (SpaceRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.requests[id]
	if !ok {
		return SpaceRequest{}, ErrRequestNotFound
	}
	return r, nil
}

func (s *MemoryRequestStore) UpdateRequest(ctx context.Context, request SpaceRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.requests[request.ID]; !ok {
		return ErrRequestNotFound
	}
	request.UpdatedAt = time.Now()
	s.requests[request.ID] = request
	return nil
}
