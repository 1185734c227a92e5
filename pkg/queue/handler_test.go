package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuekit/venuekit/pkg/queue"
)

type greetPayload struct {
	Name string `json:"name"`
}

func TestNewJobHandler(t *testing.T) {
	t.Parallel()

	t.Run("name derives from payload type", func(t *testing.T) {
		t.Parallel()

		h := queue.NewJobHandler(func(ctx context.Context, p greetPayload) error {
			return nil
		})

		assert.Equal(t, "queue_test.greetPayload", h.Name())
	})

	t.Run("unmarshals payload into typed func", func(t *testing.T) {
		t.Parallel()

		var got greetPayload
		h := queue.NewJobHandler(func(ctx context.Context, p greetPayload) error {
			got = p
			return nil
		})

		raw, err := json.Marshal(greetPayload{Name: "world"})
		require.NoError(t, err)

		require.NoError(t, h.Handle(context.Background(), raw))
		assert.Equal(t, "world", got.Name)
	})

	t.Run("propagates handler error", func(t *testing.T) {
		t.Parallel()

		handlerErr := errors.New("boom")
		h := queue.NewJobHandler(func(ctx context.Context, p greetPayload) error {
			return handlerErr
		})

		raw, err := json.Marshal(greetPayload{})
		require.NoError(t, err)

		require.ErrorIs(t, h.Handle(context.Background(), raw), handlerErr)
	})

	t.Run("returns error on malformed payload", func(t *testing.T) {
		t.Parallel()

		h := queue.NewJobHandler(func(ctx context.Context, p greetPayload) error {
			return nil
		})

		err := h.Handle(context.Background(), json.RawMessage(`{not json`))
		require.Error(t, err)
	})
}
