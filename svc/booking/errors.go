package booking

import "errors"

var (
	// ErrRequestNotFound is returned when a booking request does not exist
	ErrRequestNotFound = errors.New("space request not found")
)
