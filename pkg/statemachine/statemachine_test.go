package statemachine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuekit/venuekit/pkg/statemachine"
)

type postStatus string

const (
	statusDraft      postStatus = "draft"
	statusPublishing postStatus = "publishing"
	statusPublished  postStatus = "published"
	statusFailed     postStatus = "failed"
)

func newPostMachine() *statemachine.Machine[postStatus] {
	return statemachine.New(
		statemachine.Transition[postStatus]{From: statusDraft, To: statusPublishing, Event: "publish"},
		statemachine.Transition[postStatus]{From: statusPublishing, To: statusPublished, Event: "succeed"},
		statemachine.Transition[postStatus]{From: statusPublishing, To: statusFailed, Event: "fail"},
	)
}

func TestMachine_Fire(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("resolves valid edge", func(t *testing.T) {
		t.Parallel()

		m := newPostMachine()

		next, err := m.Fire(ctx, statusDraft, "publish", nil)
		require.NoError(t, err)
		assert.Equal(t, statusPublishing, next)
	})

	t.Run("rejects unknown edge", func(t *testing.T) {
		t.Parallel()

		m := newPostMachine()

		_, err := m.Fire(ctx, statusPublished, "publish", nil)
		require.ErrorIs(t, err, statemachine.ErrNoTransition)
	})

	t.Run("guard controls the edge", func(t *testing.T) {
		t.Parallel()

		allow := false
		m := statemachine.New(
			statemachine.Transition[postStatus]{
				From: statusDraft, To: statusPublishing, Event: "publish",
				Guard: func(ctx context.Context, from postStatus, event string, data any) bool {
					return allow
				},
			},
		)

		_, err := m.Fire(ctx, statusDraft, "publish", nil)
		require.ErrorIs(t, err, statemachine.ErrTransitionRejected)

		allow = true
		next, err := m.Fire(ctx, statusDraft, "publish", nil)
		require.NoError(t, err)
		assert.Equal(t, statusPublishing, next)
	})

	t.Run("first passing guard wins", func(t *testing.T) {
		t.Parallel()

		m := statemachine.New(
			statemachine.Transition[postStatus]{
				From: statusPublishing, To: statusFailed, Event: "finish",
				Guard: func(ctx context.Context, from postStatus, event string, data any) bool {
					failed, _ := data.(bool)
					return failed
				},
			},
			statemachine.Transition[postStatus]{From: statusPublishing, To: statusPublished, Event: "finish"},
		)

		next, err := m.Fire(ctx, statusPublishing, "finish", true)
		require.NoError(t, err)
		assert.Equal(t, statusFailed, next)

		next, err = m.Fire(ctx, statusPublishing, "finish", false)
		require.NoError(t, err)
		assert.Equal(t, statusPublished, next)
	})
}

func TestMachine_CanFire(t *testing.T) {
	t.Parallel()

	m := newPostMachine()
	ctx := context.Background()

	assert.True(t, m.CanFire(ctx, statusDraft, "publish", nil))
	assert.False(t, m.CanFire(ctx, statusFailed, "succeed", nil))
}
