package social_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuekit/venuekit/pkg/queue"
	"github.com/venuekit/venuekit/svc/provider"
	"github.com/venuekit/venuekit/svc/social"
)

func TestDispatcher(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	newDispatcher := func(t *testing.T) (*social.Dispatcher, *queue.MemoryStorage) {
		t.Helper()
		storage := queue.NewMemoryStorage()
		t.Cleanup(func() { _ = storage.Close() })
		enqueuer, err := queue.NewEnqueuer(storage)
		require.NoError(t, err)
		return social.NewDispatcher(enqueuer), storage
	}

	t.Run("publish lands on social-publish queue", func(t *testing.T) {
		t.Parallel()

		d, storage := newDispatcher(t)
		payload := social.PublishPayload{
			PostID:    uuid.New(),
			Platforms: []provider.Provider{provider.ProviderFacebook},
			Content:   "hello",
		}

		jobID, err := d.EnqueuePublish(ctx, payload)
		require.NoError(t, err)

		job, err := storage.GetJob(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, queue.QueueSocialPublish, job.Queue)
		assert.EqualValues(t, 3, job.MaxAttempts)
	})

	t.Run("scheduled publish sets scheduled_at", func(t *testing.T) {
		t.Parallel()

		d, storage := newDispatcher(t)
		at := time.Now().Add(time.Hour)
		payload := social.PublishPayload{
			PostID:    uuid.New(),
			Platforms: []provider.Provider{provider.ProviderInstagram},
		}

		jobID, err := d.EnqueueScheduled(ctx, payload, at)
		require.NoError(t, err)

		job, err := storage.GetJob(ctx, jobID)
		require.NoError(t, err)
		assert.WithinDuration(t, at, job.ScheduledAt, time.Second)
	})

	t.Run("empty platform set is rejected", func(t *testing.T) {
		t.Parallel()

		d, _ := newDispatcher(t)
		_, err := d.EnqueuePublish(ctx, social.PublishPayload{PostID: uuid.New()})
		require.ErrorIs(t, err, social.ErrNoPlatforms)
	})
}
