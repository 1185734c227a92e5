package social_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuekit/venuekit/pkg/audit"
	"github.com/venuekit/venuekit/svc/provider"
	"github.com/venuekit/venuekit/svc/social"
)

type fakeAdapter struct {
	id         provider.Provider
	createPost func(ctx context.Context, account provider.Account, content provider.PostContent) (provider.PostResult, error)
	refresh    func(ctx context.Context, account provider.Account) (provider.Token, error)
}

func (a *fakeAdapter) Provider() provider.Provider { return a.id }

func (a *fakeAdapter) CreatePost(ctx context.Context, account provider.Account, content provider.PostContent) (provider.PostResult, error) {
	return a.createPost(ctx, account, content)
}

func (a *fakeAdapter) CreateEvent(ctx context.Context, account provider.Account, details provider.EventDetails) (provider.EventResult, error) {
	return provider.EventResult{}, errors.New("not implemented")
}

func (a *fakeAdapter) RefreshToken(ctx context.Context, account provider.Account) (provider.Token, error) {
	if a.refresh == nil {
		return provider.Token{}, errors.New("not implemented")
	}
	return a.refresh(ctx, account)
}

func (a *fakeAdapter) ValidateToken(ctx context.Context, token string) (bool, error) {
	return token != "", nil
}

type fixture struct {
	posts    *social.MemoryPostStore
	accounts *provider.MemoryAccountStore
	audit    *audit.MemoryStorage
	pipeline *social.Pipeline
}

func newFixture(t *testing.T, post social.Post, accounts []provider.Account, adapters ...provider.Adapter) *fixture {
	t.Helper()

	posts := social.NewMemoryPostStore(post)
	accountStore := provider.NewMemoryAccountStore(accounts...)
	registry := provider.NewRegistry(adapters...)
	tokens := provider.NewTokenService(accountStore, registry, nil, nil)
	auditStore := audit.NewMemoryStorage()

	return &fixture{
		posts:    posts,
		accounts: accountStore,
		audit:    auditStore,
		pipeline: social.NewPipeline(posts, accountStore, registry, tokens, audit.NewLogger(auditStore), nil),
	}
}

func account(businessID string, p provider.Provider) provider.Account {
	return provider.Account{
		ID:          uuid.New(),
		BusinessID:  businessID,
		Provider:    p,
		AccessToken: "token",
	}
}

func TestPublishPipeline(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("all platforms succeed publishes post", func(t *testing.T) {
		t.Parallel()

		post := social.Post{ID: uuid.New(), BusinessID: "b1", Status: social.StatusDraft}
		f := newFixture(t, post,
			[]provider.Account{account("b1", provider.ProviderFacebook), account("b1", provider.ProviderInstagram)},
			&fakeAdapter{id: provider.ProviderFacebook, createPost: func(context.Context, provider.Account, provider.PostContent) (provider.PostResult, error) {
				return provider.PostResult{ExternalID: "fb-1", URL: "https://fb/p/1"}, nil
			}},
			&fakeAdapter{id: provider.ProviderInstagram, createPost: func(context.Context, provider.Account, provider.PostContent) (provider.PostResult, error) {
				return provider.PostResult{ExternalID: "ig-1"}, nil
			}},
		)

		payload := social.PublishPayload{
			PostID:    post.ID,
			Platforms: []provider.Provider{provider.ProviderFacebook, provider.ProviderInstagram},
			Content:   "hello",
		}
		require.NoError(t, f.pipeline.Handler().Handle(ctx, mustJSON(t, payload)))

		got, err := f.posts.GetPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, social.StatusPublished, got.Status)
		assert.Len(t, got.ExternalIDs, 2)
		assert.NotNil(t, got.PublishedAt)
		assert.Empty(t, got.ErrorMessage)

		events, err := f.audit.List(ctx, "social_post", post.ID.String())
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, audit.ResultSuccess, events[0].Result)
		assert.Len(t, events[0].Metadata["results"], 2)
	})

	t.Run("one failing platform fails post with first error", func(t *testing.T) {
		t.Parallel()

		post := social.Post{ID: uuid.New(), BusinessID: "b1", Status: social.StatusDraft}
		f := newFixture(t, post,
			[]provider.Account{account("b1", provider.ProviderFacebook), account("b1", provider.ProviderInstagram)},
			&fakeAdapter{id: provider.ProviderFacebook, createPost: func(context.Context, provider.Account, provider.PostContent) (provider.PostResult, error) {
				return provider.PostResult{}, errors.New("rate limited")
			}},
			&fakeAdapter{id: provider.ProviderInstagram, createPost: func(context.Context, provider.Account, provider.PostContent) (provider.PostResult, error) {
				return provider.PostResult{ExternalID: "ig-1"}, nil
			}},
		)

		payload := social.PublishPayload{
			PostID:    post.ID,
			Platforms: []provider.Provider{provider.ProviderFacebook, provider.ProviderInstagram},
			Content:   "hello",
		}
		require.NoError(t, f.pipeline.Handler().Handle(ctx, mustJSON(t, payload)))

		got, err := f.posts.GetPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, social.StatusFailed, got.Status)
		assert.Equal(t, "rate limited", got.ErrorMessage)

		events, err := f.audit.List(ctx, "social_post", post.ID.String())
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, audit.ResultFailure, events[0].Result)
		assert.Len(t, events[0].Metadata["results"], 2)
	})

	t.Run("refresh failure on one platform does not block the other", func(t *testing.T) {
		t.Parallel()

		expired := time.Now().Add(-time.Hour)
		badAccount := provider.Account{
			ID:           uuid.New(),
			BusinessID:   "b1",
			Provider:     provider.ProviderFacebook,
			AccessToken:  "stale",
			RefreshToken: "refresh",
			ExpiresAt:    &expired,
		}
		post := social.Post{ID: uuid.New(), BusinessID: "b1", Status: social.StatusScheduled}
		f := newFixture(t, post,
			[]provider.Account{badAccount, account("b1", provider.ProviderInstagram)},
			&fakeAdapter{
				id: provider.ProviderFacebook,
				refresh: func(context.Context, provider.Account) (provider.Token, error) {
					return provider.Token{}, errors.New("refresh revoked")
				},
				createPost: func(context.Context, provider.Account, provider.PostContent) (provider.PostResult, error) {
					t.Fatal("publish must not run after refresh failure")
					return provider.PostResult{}, nil
				},
			},
			&fakeAdapter{id: provider.ProviderInstagram, createPost: func(context.Context, provider.Account, provider.PostContent) (provider.PostResult, error) {
				return provider.PostResult{ExternalID: "ig-1"}, nil
			}},
		)

		payload := social.PublishPayload{
			PostID:    post.ID,
			Platforms: []provider.Provider{provider.ProviderFacebook, provider.ProviderInstagram},
			Content:   "hello",
		}
		require.NoError(t, f.pipeline.Handler().Handle(ctx, mustJSON(t, payload)))

		got, err := f.posts.GetPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, social.StatusFailed, got.Status)

		events, err := f.audit.List(ctx, "social_post", post.ID.String())
		require.NoError(t, err)
		require.Len(t, events, 1)
		results, ok := events[0].Metadata["results"].([]social.PlatformResult)
		require.True(t, ok)
		require.Len(t, results, 2)
		assert.False(t, results[0].Success)
		assert.True(t, results[1].Success)
		assert.Equal(t, "ig-1", results[1].ExternalID)
	})

	t.Run("missing account is a per-platform failure", func(t *testing.T) {
		t.Parallel()

		post := social.Post{ID: uuid.New(), BusinessID: "b1", Status: social.StatusDraft}
		f := newFixture(t, post,
			[]provider.Account{account("b1", provider.ProviderInstagram)},
			&fakeAdapter{id: provider.ProviderInstagram, createPost: func(context.Context, provider.Account, provider.PostContent) (provider.PostResult, error) {
				return provider.PostResult{ExternalID: "ig-1"}, nil
			}},
		)

		payload := social.PublishPayload{
			PostID:    post.ID,
			Platforms: []provider.Provider{provider.ProviderFacebook, provider.ProviderInstagram},
			Content:   "hello",
		}
		require.NoError(t, f.pipeline.Handler().Handle(ctx, mustJSON(t, payload)))

		got, err := f.posts.GetPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, social.StatusFailed, got.Status)
		assert.Equal(t, "no connected account", got.ErrorMessage)
	})

	t.Run("missing post escalates to the engine", func(t *testing.T) {
		t.Parallel()

		post := social.Post{ID: uuid.New(), BusinessID: "b1", Status: social.StatusDraft}
		f := newFixture(t, post, nil)

		payload := social.PublishPayload{
			PostID:    uuid.New(),
			Platforms: []provider.Provider{provider.ProviderFacebook},
		}
		err := f.pipeline.Handler().Handle(ctx, mustJSON(t, payload))
		require.ErrorIs(t, err, social.ErrPostNotFound)
	})

	t.Run("settled post makes the job a no-op", func(t *testing.T) {
		t.Parallel()

		post := social.Post{ID: uuid.New(), BusinessID: "b1", Status: social.StatusPublished}
		f := newFixture(t, post, nil)

		payload := social.PublishPayload{
			PostID:    post.ID,
			Platforms: []provider.Provider{provider.ProviderFacebook},
		}
		require.NoError(t, f.pipeline.Handler().Handle(ctx, mustJSON(t, payload)))

		got, err := f.posts.GetPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, social.StatusPublished, got.Status)

		events, err := f.audit.List(ctx, "social_post", post.ID.String())
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}
