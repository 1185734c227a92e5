package audit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuekit/venuekit/pkg/audit"
)

func TestLogger(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("log success event", func(t *testing.T) {
		t.Parallel()

		storage := audit.NewMemoryStorage()
		logger := audit.NewLogger(storage)

		err := logger.Log(ctx, "social.post.publish",
			audit.WithResource("social_post", "p1"),
			audit.WithBusinessID("b1"),
			audit.WithMetadata(map[string]any{"platforms": 2}),
		)
		require.NoError(t, err)

		events, err := storage.List(ctx, "social_post", "p1")
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, audit.ResultSuccess, events[0].Result)
		assert.Equal(t, "social.post.publish", events[0].Action)
		assert.Equal(t, "b1", events[0].BusinessID)
		assert.Equal(t, 2, events[0].Metadata["platforms"])
		assert.NotEmpty(t, events[0].ID)
	})

	t.Run("log error event", func(t *testing.T) {
		t.Parallel()

		storage := audit.NewMemoryStorage()
		logger := audit.NewLogger(storage)

		err := logger.LogError(ctx, "webhook.deliver", errors.New("status 502"),
			audit.WithResource("webhook_endpoint", "w1"),
		)
		require.NoError(t, err)

		events, err := storage.List(ctx, "webhook_endpoint", "w1")
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, audit.ResultFailure, events[0].Result)
		assert.Equal(t, "status 502", events[0].Error)
	})

	t.Run("missing action is rejected", func(t *testing.T) {
		t.Parallel()

		logger := audit.NewLogger(audit.NewMemoryStorage())
		require.ErrorIs(t, logger.Log(ctx, ""), audit.ErrEventValidation)
	})

	t.Run("events keep insertion order", func(t *testing.T) {
		t.Parallel()

		storage := audit.NewMemoryStorage()
		logger := audit.NewLogger(storage)

		require.NoError(t, logger.Log(ctx, "first", audit.WithResource("r", "1")))
		require.NoError(t, logger.Log(ctx, "second", audit.WithResource("r", "1")))

		events, err := storage.List(ctx, "r", "1")
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "first", events[0].Action)
		assert.Equal(t, "second", events[1].Action)
	})
}
