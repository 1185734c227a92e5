package audit

import "errors"

var (
	// ErrEventValidation is returned when an event is missing required fields
	ErrEventValidation = errors.New("audit event validation failed")
)
