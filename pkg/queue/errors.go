package queue

import "errors"

// Common errors
var (
	// ErrRepositoryNil is returned when a nil repository is provided
	ErrRepositoryNil = errors.New("repository cannot be nil")

	// ErrPayloadNil is returned when attempting to enqueue a nil payload
	ErrPayloadNil = errors.New("payload cannot be nil")

	// ErrInvalidMaxAttempts is returned when max attempts is outside valid range
	ErrInvalidMaxAttempts = errors.New("max attempts must be between 1 and 10")

	// ErrNoJobToClaim is returned by storage when no eligible job is available
	ErrNoJobToClaim = errors.New("no job available to claim")

	// ErrJobNotFound is returned by storage when a job id is unknown
	ErrJobNotFound = errors.New("job not found")

	// ErrHandlerNotFound is returned when no handler is registered for a job
	ErrHandlerNotFound = errors.New("no handler registered for job type")

	// ErrNoHandlers is returned when worker has no handlers registered
	ErrNoHandlers = errors.New("no job handlers registered")
)
