// Package secrets provides AES-256-GCM encryption for data at rest,
// primarily social account access and refresh tokens.
//
// Each value is encrypted with a compound key derived via HKDF from the
// application key and a per-business key, so a leaked business key never
// exposes another tenant's tokens.
package secrets
