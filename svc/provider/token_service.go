package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// TokenService runs the token refresh subroutine for pipelines. EnsureFresh
// is called per platform inside publish and sync loops; a refresh failure is
// reported to the caller, which records a per-platform failure and moves on
// to the next account instead of failing the whole job.
type TokenService struct {
	store    AccountStore
	registry *Registry
	cipher   *TokenCipher
	log      *slog.Logger
	now      func() time.Time
}

// NewTokenService creates a token service. A nil cipher means tokens are
// stored in plaintext, which is only acceptable in tests.
func NewTokenService(store AccountStore, registry *Registry, cipher *TokenCipher, log *slog.Logger) *TokenService {
	if log == nil {
		log = slog.Default()
	}
	return &TokenService{
		store:    store,
		registry: registry,
		cipher:   cipher,
		log:      log,
		now:      time.Now,
	}
}

// EnsureFresh returns the account with plaintext tokens ready for adapter
// calls. When the access token has a known expiry in the past, it refreshes
// through the provider adapter and persists the new encrypted tokens before
// returning, so a crash mid-pipeline never loses issued credentials.
func (s *TokenService) EnsureFresh(ctx context.Context, account Account) (Account, error) {
	plain, err := s.decryptTokens(account)
	if err != nil {
		return Account{}, err
	}

	if !account.TokenExpired(s.now()) {
		return plain, nil
	}

	if plain.RefreshToken == "" {
		return Account{}, fmt.Errorf("%w: %s", ErrNoRefreshToken, account.ID)
	}

	adapter, err := s.registry.Adapter(account.Provider)
	if err != nil {
		return Account{}, err
	}

	token, err := adapter.RefreshToken(ctx, plain)
	if err != nil {
		s.log.WarnContext(ctx, "token refresh failed",
			slog.String("account_id", account.ID.String()),
			slog.String("provider", string(account.Provider)),
			slog.Any("error", err))
		return Account{}, errors.Join(ErrTokenRefreshFailed, err)
	}

	if err := s.persistTokens(ctx, account, token); err != nil {
		return Account{}, err
	}

	plain.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		plain.RefreshToken = token.RefreshToken
	}
	plain.ExpiresAt = token.ExpiresAt
	return plain, nil
}

func (s *TokenService) decryptTokens(account Account) (Account, error) {
	if s.cipher == nil {
		return account, nil
	}

	access, err := s.cipher.Decrypt(account.BusinessID, account.AccessToken)
	if err != nil {
		return Account{}, err
	}
	refresh, err := s.cipher.Decrypt(account.BusinessID, account.RefreshToken)
	if err != nil {
		return Account{}, err
	}

	account.AccessToken = access
	account.RefreshToken = refresh
	return account, nil
}

func (s *TokenService) persistTokens(ctx context.Context, account Account, token Token) error {
	access, refresh := token.AccessToken, token.RefreshToken
	if s.cipher != nil {
		var err error
		if access, err = s.cipher.Encrypt(account.BusinessID, access); err != nil {
			return err
		}
		if refresh, err = s.cipher.Encrypt(account.BusinessID, refresh); err != nil {
			return err
		}
	}
	if err := s.store.UpdateTokens(ctx, account.ID, access, refresh, token.ExpiresAt); err != nil {
		return fmt.Errorf("persist refreshed tokens: %w", err)
	}
	return nil
}
