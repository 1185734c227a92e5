package webhooks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/venuekit/venuekit/pkg/queue"
	"github.com/venuekit/venuekit/pkg/webhook"
)

// Pipeline delivers webhook payloads to subscriber endpoints. Each handler
// invocation makes exactly one HTTP attempt and appends exactly one delivery
// row; returning an error hands the retry decision back to the engine, whose
// next attempt appends its own row.
type Pipeline struct {
	endpoints  EndpointStore
	deliveries DeliveryStore
	sender     *webhook.Sender
	log        *slog.Logger
}

func NewPipeline(endpoints EndpointStore, deliveries DeliveryStore, sender *webhook.Sender, log *slog.Logger) *Pipeline {
	if sender == nil {
		sender = webhook.NewSender()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		endpoints:  endpoints,
		deliveries: deliveries,
		sender:     sender,
		log:        log,
	}
}

// Handler returns the queue handler bound to DeliveryPayload.
func (p *Pipeline) Handler() queue.Handler {
	return queue.NewJobHandler(p.handleDelivery)
}

func (p *Pipeline) handleDelivery(ctx context.Context, payload DeliveryPayload) error {
	endpoint, err := p.endpoints.GetEndpoint(ctx, payload.EndpointID)
	if err != nil {
		return fmt.Errorf("load endpoint %s: %w", payload.EndpointID, err)
	}
	if !endpoint.Active {
		return fmt.Errorf("endpoint %s: %w", endpoint.ID, ErrEndpointInactive)
	}

	jobID, _ := queue.JobIDFromContext(ctx)

	headers := webhook.Headers{
		Event:      payload.Event,
		DeliveryID: jobID.String(),
		Signature:  webhook.Sign(endpoint.Secret, payload.Data),
	}

	result, err := p.sender.Deliver(ctx, endpoint.URL, payload.Data, headers)

	row := Delivery{
		ID:           uuid.New(),
		EndpointID:   endpoint.ID,
		JobID:        jobID,
		Event:        payload.Event,
		StatusCode:   result.StatusCode,
		ResponseBody: result.Body,
		AttemptedAt:  time.Now(),
	}
	if err != nil {
		row.Status = DeliveryFailed
		row.Error = err.Error()
	} else {
		row.Status = DeliverySuccess
	}

	if appendErr := p.deliveries.AppendDelivery(ctx, row); appendErr != nil {
		p.log.ErrorContext(ctx, "failed to append delivery row",
			slog.String("endpoint_id", endpoint.ID.String()),
			slog.Any("error", appendErr))
	}

	if err != nil {
		return fmt.Errorf("deliver to %s: %w", endpoint.URL, err)
	}
	return nil
}
