package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the required size for both app and business keys
	KeySize = 32 // 256 bits for AES-256

	// saltInfo provides domain separation for HKDF key derivation
	saltInfo = "venuekit-secrets-v1"
)

// ValidateKeys checks that both keys are the correct length.
func ValidateKeys(appKey, businessKey []byte) error {
	// Perform both validations to keep timing independent of which key fails
	validApp := len(appKey) == KeySize
	validBusiness := len(businessKey) == KeySize

	if !validApp {
		return ErrInvalidAppKey
	}
	if !validBusiness {
		return ErrInvalidBusinessKey
	}
	return nil
}

// deriveKey creates a compound key from app and business keys using HKDF.
// Callers must clear the returned key with clearBytes() when done.
func deriveKey(appKey, businessKey []byte) ([]byte, error) {
	hkdfReader := hkdf.New(sha256.New, appKey, businessKey, []byte(saltInfo))

	derivedKey := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdfReader, derivedKey); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}

	return derivedKey, nil
}

// clearBytes zeros out a byte slice to remove key material from memory.
func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// GenerateKey creates a new random 32-byte key suitable for encryption
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}
