package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/venuekit/venuekit/pkg/audit"
	"github.com/venuekit/venuekit/pkg/queue"
	"github.com/venuekit/venuekit/pkg/statemachine"
)

// ExpiryPipeline expires unpaid payment holds. Every branch re-checks the
// request's current state right before acting, so redelivery of the same job
// after a crash or a race with payment is always a safe no-op.
type ExpiryPipeline struct {
	requests RequestStore
	machine  *statemachine.Machine[RequestStatus]
	audit    audit.Logger
	log      *slog.Logger
	now      func() time.Time
}

func NewExpiryPipeline(requests RequestStore, auditLog audit.Logger, log *slog.Logger) *ExpiryPipeline {
	if log == nil {
		log = slog.Default()
	}
	return &ExpiryPipeline{
		requests: requests,
		machine:  NewRequestMachine(),
		audit:    auditLog,
		log:      log,
		now:      time.Now,
	}
}

// Handler returns the queue handler bound to HoldExpiryPayload.
func (p *ExpiryPipeline) Handler() queue.Handler {
	return queue.NewJobHandler(p.handleExpiry)
}

func (p *ExpiryPipeline) handleExpiry(ctx context.Context, payload HoldExpiryPayload) error {
	request, err := p.requests.GetRequest(ctx, payload.RequestID)
	if err != nil {
		if errors.Is(err, ErrRequestNotFound) {
			p.log.InfoContext(ctx, "hold expiry for missing request, skipping",
				slog.String("request_id", payload.RequestID.String()))
			return nil
		}
		return fmt.Errorf("load request %s: %w", payload.RequestID, err)
	}

	if request.Status != StatusNeedsPayment {
		// The guest paid or the host declined before the hold ran out.
		return nil
	}

	if request.HoldExpiresAt != nil && request.HoldExpiresAt.After(p.now()) {
		// The hold was re-extended after this job was scheduled.
		return nil
	}

	next, err := p.machine.Fire(ctx, request.Status, EventHoldExpire, nil)
	if err != nil {
		return fmt.Errorf("expire request %s: %w", request.ID, err)
	}

	request.Status = next
	if err := p.requests.UpdateRequest(ctx, request); err != nil {
		return fmt.Errorf("update request %s: %w", request.ID, err)
	}

	if err := p.audit.Log(ctx, "booking.hold.expired",
		audit.WithResource("space_request", request.ID.String()),
		audit.WithBusinessID(request.BusinessID),
	); err != nil {
		p.log.ErrorContext(ctx, "audit write failed", slog.Any("error", err))
	}
	return nil
}
