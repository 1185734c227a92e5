package provider

import (
	"context"
	"fmt"
)

// Adapter abstracts one external platform behind a fixed capability set.
// Implementations encapsulate all protocol details against the provider's
// REST API; pipelines never branch on provider beyond selecting the matching
// adapter from the Registry.
type Adapter interface {
	// Provider returns the stable provider identifier used for registry
	// lookup, storage and logging.
	Provider() Provider

	// CreatePost publishes content on the platform using the account's
	// credentials and returns the created post's external id and URL.
	CreatePost(ctx context.Context, account Account, content PostContent) (PostResult, error)

	// CreateEvent creates an event listing on the platform.
	CreateEvent(ctx context.Context, account Account, details EventDetails) (EventResult, error)

	// RefreshToken exchanges the account's refresh token for fresh
	// credentials. Adapters whose providers speak standard OAuth2 refresh
	// can delegate to OAuthRefresher.
	RefreshToken(ctx context.Context, account Account) (Token, error)

	// ValidateToken reports whether the access token is still accepted by
	// the platform.
	ValidateToken(ctx context.Context, token string) (bool, error)
}

// Registry maps provider ids to adapters. Pipelines resolve the adapter once
// per loop iteration and call capability methods on it.
type Registry struct {
	adapters map[Provider]Adapter
}

// NewRegistry builds a registry from the given adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	m := make(map[Provider]Adapter, len(adapters))
	for _, a := range adapters {
		m[a.Provider()] = a
	}
	return &Registry{adapters: m}
}

// Adapter returns the adapter registered for the provider.
func (r *Registry) Adapter(p Provider) (Adapter, error) {
	a, ok := r.adapters[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAdapterNotRegistered, p)
	}
	return a, nil
}
