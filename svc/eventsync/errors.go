package eventsync

import "errors"

var (
	// ErrEventSyncNotFound is returned when the record referenced by a job does not exist
	ErrEventSyncNotFound = errors.New("event sync record not found")

	// ErrUnknownDirection is returned for a direction other than export or import
	ErrUnknownDirection = errors.New("unknown sync direction")
)
