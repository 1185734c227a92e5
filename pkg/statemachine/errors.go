package statemachine

import "errors"

var (
	// ErrNoTransition is returned when the table has no edge for the
	// current state and event
	ErrNoTransition = errors.New("no transition available")

	// ErrTransitionRejected is returned when every candidate transition's
	// guard refused
	ErrTransitionRejected = errors.New("transition rejected by guard")
)
