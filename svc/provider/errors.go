package provider

import "errors"

var (
	// ErrAdapterNotRegistered is returned when no adapter exists for a provider id
	ErrAdapterNotRegistered = errors.New("no adapter registered for provider")

	// ErrAccountNotFound is returned when a social account does not exist
	ErrAccountNotFound = errors.New("social account not found")

	// ErrTokenRefreshFailed wraps provider errors from the refresh call
	ErrTokenRefreshFailed = errors.New("token refresh failed")

	// ErrNoRefreshToken is returned when an expired account has no refresh token to exchange
	ErrNoRefreshToken = errors.New("account has no refresh token")
)
