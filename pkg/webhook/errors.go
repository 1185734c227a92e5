package webhook

import "errors"

var (
	// ErrInvalidURL is returned when the webhook URL is missing or malformed
	ErrInvalidURL = errors.New("invalid webhook URL")

	// ErrInvalidPayload is returned when the payload is empty
	ErrInvalidPayload = errors.New("invalid webhook payload")

	// ErrTimeout is returned when the request exceeded the delivery timeout
	ErrTimeout = errors.New("webhook delivery timed out")

	// ErrDeliveryFailed is returned for transport failures and non-2xx responses
	ErrDeliveryFailed = errors.New("webhook delivery failed")
)
