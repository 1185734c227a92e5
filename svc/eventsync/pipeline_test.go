package eventsync_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuekit/venuekit/pkg/audit"
	"github.com/venuekit/venuekit/svc/eventsync"
	"github.com/venuekit/venuekit/svc/provider"
)

type fakeAdapter struct {
	id          provider.Provider
	createEvent func(ctx context.Context, account provider.Account, details provider.EventDetails) (provider.EventResult, error)
}

func (a *fakeAdapter) Provider() provider.Provider { return a.id }

func (a *fakeAdapter) CreatePost(ctx context.Context, account provider.Account, content provider.PostContent) (provider.PostResult, error) {
	return provider.PostResult{}, errors.New("not implemented")
}

func (a *fakeAdapter) CreateEvent(ctx context.Context, account provider.Account, details provider.EventDetails) (provider.EventResult, error) {
	return a.createEvent(ctx, account, details)
}

func (a *fakeAdapter) RefreshToken(ctx context.Context, account provider.Account) (provider.Token, error) {
	return provider.Token{}, errors.New("not implemented")
}

func (a *fakeAdapter) ValidateToken(ctx context.Context, token string) (bool, error) {
	return token != "", nil
}

func account(businessID string, p provider.Provider) provider.Account {
	return provider.Account{
		ID:          uuid.New(),
		BusinessID:  businessID,
		Provider:    p,
		AccessToken: "token",
	}
}

func newPipeline(record eventsync.EventSync, accounts []provider.Account, adapters ...provider.Adapter) (*eventsync.Pipeline, *eventsync.MemoryStore) {
	store := eventsync.NewMemoryStore(record)
	accountStore := provider.NewMemoryAccountStore(accounts...)
	registry := provider.NewRegistry(adapters...)
	tokens := provider.NewTokenService(accountStore, registry, nil, nil)
	auditLog := audit.NewLogger(audit.NewMemoryStorage())
	return eventsync.NewPipeline(store, accountStore, registry, tokens, auditLog, nil), store
}

func handle(t *testing.T, p *eventsync.Pipeline, payload eventsync.SyncPayload) error {
	t.Helper()

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return p.Handler().Handle(context.Background(), data)
}

func TestExportPipeline(t *testing.T) {
	t.Parallel()

	t.Run("partial provider failure still settles as success", func(t *testing.T) {
		t.Parallel()

		record := eventsync.EventSync{ID: uuid.New(), BusinessID: "b1"}
		p, store := newPipeline(record,
			[]provider.Account{account("b1", provider.ProviderEventbrite), account("b1", provider.ProviderMeetup)},
			&fakeAdapter{id: provider.ProviderEventbrite, createEvent: func(context.Context, provider.Account, provider.EventDetails) (provider.EventResult, error) {
				return provider.EventResult{}, errors.New("quota exceeded")
			}},
			&fakeAdapter{id: provider.ProviderMeetup, createEvent: func(context.Context, provider.Account, provider.EventDetails) (provider.EventResult, error) {
				return provider.EventResult{ExternalID: "mu-1", URL: "https://meetup/e/1"}, nil
			}},
		)

		require.NoError(t, handle(t, p, eventsync.SyncPayload{EventSyncID: record.ID, Direction: eventsync.DirectionExport}))

		got, err := store.GetEventSync(context.Background(), record.ID)
		require.NoError(t, err)
		assert.Equal(t, eventsync.SyncStatusSuccess, got.LastSyncStatus)
		assert.Empty(t, got.LastSyncError)
		assert.Equal(t, "quota exceeded", got.SyncData[provider.ProviderEventbrite].Error)
		assert.Equal(t, "https://meetup/e/1", got.SyncData[provider.ProviderMeetup].URL)
		assert.Equal(t, []string{"mu-1"}, got.ExternalIDs)
		assert.NotNil(t, got.LastSyncedAt)
	})

	t.Run("provider failure keeps earlier sync data entries", func(t *testing.T) {
		t.Parallel()

		record := eventsync.EventSync{
			ID:         uuid.New(),
			BusinessID: "b1",
			SyncData: map[provider.Provider]eventsync.SyncEntry{
				provider.ProviderFacebookPage: {ExternalID: "fb-old", SyncedAt: time.Now().Add(-time.Hour)},
			},
		}
		p, store := newPipeline(record,
			[]provider.Account{account("b1", provider.ProviderMeetup)},
			&fakeAdapter{id: provider.ProviderMeetup, createEvent: func(context.Context, provider.Account, provider.EventDetails) (provider.EventResult, error) {
				return provider.EventResult{}, errors.New("down")
			}},
		)

		require.NoError(t, handle(t, p, eventsync.SyncPayload{EventSyncID: record.ID, Direction: eventsync.DirectionExport}))

		got, err := store.GetEventSync(context.Background(), record.ID)
		require.NoError(t, err)
		assert.Equal(t, "fb-old", got.SyncData[provider.ProviderFacebookPage].ExternalID)
		assert.Equal(t, "down", got.SyncData[provider.ProviderMeetup].Error)
	})

	t.Run("missing record escalates to the engine", func(t *testing.T) {
		t.Parallel()

		p, _ := newPipeline(eventsync.EventSync{ID: uuid.New(), BusinessID: "b1"}, nil)

		err := handle(t, p, eventsync.SyncPayload{EventSyncID: uuid.New(), Direction: eventsync.DirectionExport})
		require.ErrorIs(t, err, eventsync.ErrEventSyncNotFound)
	})

	t.Run("import is an acknowledged stub", func(t *testing.T) {
		t.Parallel()

		record := eventsync.EventSync{ID: uuid.New(), BusinessID: "b1"}
		p, store := newPipeline(record, nil)

		require.NoError(t, handle(t, p, eventsync.SyncPayload{EventSyncID: record.ID, Direction: eventsync.DirectionImport}))

		got, err := store.GetEventSync(context.Background(), record.ID)
		require.NoError(t, err)
		assert.Empty(t, got.LastSyncStatus)
		assert.Empty(t, got.ExternalIDs)
	})

	t.Run("unknown direction errors", func(t *testing.T) {
		t.Parallel()

		record := eventsync.EventSync{ID: uuid.New(), BusinessID: "b1"}
		p, _ := newPipeline(record, nil)

		err := handle(t, p, eventsync.SyncPayload{EventSyncID: record.ID, Direction: "sideways"})
		require.ErrorIs(t, err, eventsync.ErrUnknownDirection)
	})
}
