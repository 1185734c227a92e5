package webhooks_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuekit/venuekit/pkg/queue"
	"github.com/venuekit/venuekit/pkg/webhook"
	"github.com/venuekit/venuekit/svc/webhooks"
)

func newEndpoint(url string) webhooks.Endpoint {
	return webhooks.Endpoint{
		ID:     uuid.New(),
		URL:    url,
		Secret: "shh",
		Active: true,
	}
}

func handle(t *testing.T, p *webhooks.Pipeline, payload webhooks.DeliveryPayload) error {
	t.Helper()

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return p.Handler().Handle(context.Background(), data)
}

func TestDeliveryPipeline(t *testing.T) {
	t.Parallel()

	t.Run("successful delivery appends one success row", func(t *testing.T) {
		t.Parallel()

		body := json.RawMessage(`{"booking_id":"b-1"}`)
		var gotSignature, gotEvent string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotSignature = r.Header.Get("X-Webhook-Signature")
			gotEvent = r.Header.Get("X-Webhook-Event")
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		endpoint := newEndpoint(srv.URL)
		store := webhooks.NewMemoryStore(endpoint)
		p := webhooks.NewPipeline(store, store, nil, nil)

		require.NoError(t, handle(t, p, webhooks.DeliveryPayload{
			EndpointID: endpoint.ID,
			Event:      "booking.created",
			Data:       body,
		}))

		assert.Equal(t, webhook.Sign("shh", body), gotSignature)
		assert.Equal(t, "booking.created", gotEvent)

		rows, err := store.ListDeliveries(context.Background(), endpoint.ID)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, webhooks.DeliverySuccess, rows[0].Status)
		assert.Equal(t, http.StatusOK, rows[0].StatusCode)
	})

	t.Run("non-2xx appends a failed row and errors", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer srv.Close()

		endpoint := newEndpoint(srv.URL)
		store := webhooks.NewMemoryStore(endpoint)
		p := webhooks.NewPipeline(store, store, nil, nil)

		err := handle(t, p, webhooks.DeliveryPayload{
			EndpointID: endpoint.ID,
			Event:      "booking.created",
			Data:       json.RawMessage(`{}`),
		})
		require.Error(t, err)

		rows, err := store.ListDeliveries(context.Background(), endpoint.ID)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, webhooks.DeliveryFailed, rows[0].Status)
		assert.Equal(t, http.StatusBadGateway, rows[0].StatusCode)
		assert.NotEmpty(t, rows[0].Error)
	})

	t.Run("inactive endpoint errors without a row", func(t *testing.T) {
		t.Parallel()

		endpoint := newEndpoint("https://example.com/hook")
		endpoint.Active = false
		store := webhooks.NewMemoryStore(endpoint)
		p := webhooks.NewPipeline(store, store, nil, nil)

		err := handle(t, p, webhooks.DeliveryPayload{
			EndpointID: endpoint.ID,
			Event:      "booking.created",
			Data:       json.RawMessage(`{}`),
		})
		require.ErrorIs(t, err, webhooks.ErrEndpointInactive)

		rows, err := store.ListDeliveries(context.Background(), endpoint.ID)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("missing endpoint errors", func(t *testing.T) {
		t.Parallel()

		store := webhooks.NewMemoryStore()
		p := webhooks.NewPipeline(store, store, nil, nil)

		err := handle(t, p, webhooks.DeliveryPayload{
			EndpointID: uuid.New(),
			Event:      "booking.created",
			Data:       json.RawMessage(`{}`),
		})
		require.ErrorIs(t, err, webhooks.ErrEndpointNotFound)
	})

	t.Run("five engine attempts leave five failed rows", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			http.Error(w, "down", http.StatusInternalServerError)
		}))
		defer srv.Close()

		endpoint := newEndpoint(srv.URL)
		store := webhooks.NewMemoryStore(endpoint)
		p := webhooks.NewPipeline(store, store, nil, nil)

		storage := queue.NewMemoryStorage()
		defer storage.Close()

		w, err := queue.NewWorker(storage,
			queue.WithQueues(queue.QueueWebhookDelivery),
			queue.WithPullInterval(10*time.Millisecond),
		)
		require.NoError(t, err)
		require.NoError(t, w.RegisterHandler(p.Handler()))
		require.NoError(t, w.Start(context.Background()))
		t.Cleanup(func() { _ = w.Stop() })

		enqueuer, err := queue.NewEnqueuer(storage)
		require.NoError(t, err)
		_, err = enqueuer.Enqueue(context.Background(),
			webhooks.DeliveryPayload{
				EndpointID: endpoint.ID,
				Event:      "booking.created",
				Data:       json.RawMessage(`{}`),
			},
			queue.WithQueue(queue.QueueWebhookDelivery),
			queue.WithMaxAttempts(5),
			queue.WithBackoff(queue.Policy{Kind: queue.BackoffFixed, Delay: time.Millisecond}),
		)
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			return len(storage.DeadLetterJobs()) == 1
		}, 5*time.Second, 20*time.Millisecond)

		rows, err := store.ListDeliveries(context.Background(), endpoint.ID)
		require.NoError(t, err)
		require.Len(t, rows, 5)
		for _, row := range rows {
			assert.Equal(t, webhooks.DeliveryFailed, row.Status)
		}
		assert.EqualValues(t, 5, hits.Load())
	})
}
