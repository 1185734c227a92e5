package provider

import (
	"crypto/sha256"
	"fmt"

	"github.com/venuekit/venuekit/pkg/secrets"
)

// TokenCipher encrypts and decrypts account tokens at rest. Each business
// gets its own derived key, so a leaked ciphertext from one tenant is useless
// against another.
type TokenCipher struct {
	appKey []byte
}

// NewTokenCipher creates a cipher bound to the application secret key.
// The key must be secrets.KeySize bytes.
func NewTokenCipher(appKey []byte) (*TokenCipher, error) {
	if len(appKey) != secrets.KeySize {
		return nil, secrets.ErrInvalidAppKey
	}
	return &TokenCipher{appKey: appKey}, nil
}

// businessKey maps a business id of any length onto a fixed-size tenant key.
func businessKey(businessID string) []byte {
	sum := sha256.Sum256([]byte(businessID))
	return sum[:]
}

// Encrypt encrypts a token for storage under the business's derived key.
func (c *TokenCipher) Encrypt(businessID, token string) (string, error) {
	if token == "" {
		return "", nil
	}
	out, err := secrets.EncryptString(c.appKey, businessKey(businessID), token)
	if err != nil {
		return "", fmt.Errorf("encrypt token: %w", err)
	}
	return out, nil
}

// Decrypt decrypts a stored token for use in an adapter call.
func (c *TokenCipher) Decrypt(businessID, ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	out, err := secrets.DecryptString(c.appKey, businessKey(businessID), ciphertext)
	if err != nil {
		return "", fmt.Errorf("decrypt token: %w", err)
	}
	return out, nil
}
