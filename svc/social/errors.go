package social

import "errors"

var (
	// ErrPostNotFound is returned when the post referenced by a job does not exist
	ErrPostNotFound = errors.New("social post not found")

	// ErrNoPlatforms is returned when a publish payload names no platforms
	ErrNoPlatforms = errors.New("publish payload has no platforms")
)
