package webhooks

import "errors"

var (
	// ErrEndpointNotFound is returned when the endpoint referenced by a job does not exist
	ErrEndpointNotFound = errors.New("webhook endpoint not found")

	// ErrEndpointInactive is returned when a delivery targets a disabled endpoint
	ErrEndpointInactive = errors.New("webhook endpoint is inactive")
)
