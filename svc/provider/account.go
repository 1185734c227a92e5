package provider

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Account is a connected social account owned by a business. Access and
// refresh tokens are stored encrypted; use TokenCipher to read them.
type Account struct {
	ID                uuid.UUID
	BusinessID        string
	Provider          Provider
	ExternalAccountID string
	AccessToken       string // encrypted at rest
	RefreshToken      string // encrypted at rest
	ExpiresAt         *time.Time
	Scopes            []string
	UpdatedAt         time.Time
}

// TokenExpired reports whether the access token has a known expiry that has
// passed. Accounts without an expiry never report expired.
func (a Account) TokenExpired(now time.Time) bool {
	return a.ExpiresAt != nil && a.ExpiresAt.Before(now)
}

// AccountStore reads and updates connected accounts. The token refresh
// subroutine is the only pipeline writer.
type AccountStore interface {
	// GetAccount returns the account with the given id.
	GetAccount(ctx context.Context, id uuid.UUID) (Account, error)

	// ListAccounts returns the business's accounts restricted to the given
	// providers. An empty provider list matches all providers.
	ListAccounts(ctx context.Context, businessID string, providers []Provider) ([]Account, error)

	// UpdateTokens persists fresh credentials on the account.
	UpdateTokens(ctx context.Context, id uuid.UUID, accessToken, refreshToken string, expiresAt *time.Time) error
}

// MemoryAccountStore is an in-memory AccountStore for tests and local runs.
type MemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]Account
}

func NewMemoryAccountStore(accounts ...Account) *MemoryAccountStore {
	m := make(map[uuid.UUID]Account, len(accounts))
	for _, a := range accounts {
		m[a.ID] = a
	}
	return &MemoryAccountStore{accounts: m}
}

func (s *MemoryAccountStore) GetAccount(ctx context.Context, id uuid.UUID) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return a, nil
}

func (s *MemoryAccountStore) ListAccounts(ctx context.Context, businessID string, providers []Provider) ([]Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Account
	for _, a := range s.accounts {
		if a.BusinessID != businessID {
			continue
		}
		if len(providers) > 0 && !slices.Contains(providers, a.Provider) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *MemoryAccountStore) UpdateTokens(ctx context.Context, id uuid.UUID, accessToken, refreshToken string, expiresAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	a.AccessToken = accessToken
	if refreshToken != "" {
		a.RefreshToken = refreshToken
	}
	a.ExpiresAt = expiresAt
	a.UpdatedAt = time.Now()
	s.accounts[id] = a
	return nil
}

// PutAccount inserts or replaces an account. Intended for test setup.
func (s *MemoryAccountStore) PutAccount(a Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = a
}
