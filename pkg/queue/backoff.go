package queue

import "time"

// BackoffKind selects how the retry delay grows between attempts.
type BackoffKind string

const (
	BackoffFixed       BackoffKind = "fixed"
	BackoffExponential BackoffKind = "exponential"
)

// Policy describes the retry backoff for a single job. The zero value is
// usable and behaves as exponential backoff from DefaultBackoffDelay.
type Policy struct {
	Kind  BackoffKind   `json:"kind"`
	Delay time.Duration `json:"delay"`
}

// DefaultBackoffDelay is used when a policy carries no base delay.
const DefaultBackoffDelay = 30 * time.Second

// maxBackoff caps the computed delay to keep exhausted exponential jobs from
// drifting hours into the future.
const maxBackoff = 15 * time.Minute

// Next returns the delay before the given retry attempt (1-based).
func (p Policy) Next(attempt int8) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	base := p.Delay
	if base <= 0 {
		base = DefaultBackoffDelay
	}

	var d time.Duration
	switch p.Kind {
	case BackoffFixed:
		d = base
	default:
		d = base << (attempt - 1)
	}

	if d > maxBackoff || d <= 0 {
		d = maxBackoff
	}
	return d
}
