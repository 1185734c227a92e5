package statemachine

import "context"

// Guard evaluates whether a transition should be allowed based on runtime
// conditions, e.g. re-reading the entity's persisted state.
type Guard[S comparable] func(ctx context.Context, from S, event string, data any) bool

// Transition defines a state change triggered by an event, with an optional
// guard.
type Transition[S comparable] struct {
	From  S
	To    S
	Event string
	Guard Guard[S]
}

// Machine is a stateless transition table over states of type S. It holds no
// current state: the caller owns the entity's persisted status and asks the
// machine to validate and resolve edges. This keeps check-then-act updates
// honest, since the state that matters is always the one just read from the
// store, never one cached in memory.
type Machine[S comparable] struct {
	transitions map[S]map[string][]Transition[S]
}

// New builds a machine from a transition table.
func New[S comparable](transitions ...Transition[S]) *Machine[S] {
	m := &Machine[S]{
		transitions: make(map[S]map[string][]Transition[S]),
	}
	for _, t := range transitions {
		if _, ok := m.transitions[t.From]; !ok {
			m.transitions[t.From] = make(map[string][]Transition[S])
		}
		// Multiple transitions per from/event support guard-based branching
		m.transitions[t.From][t.Event] = append(m.transitions[t.From][t.Event], t)
	}
	return m
}

// Fire resolves the transition for (current, event). It returns the next
// state, ErrNoTransition when the table has no such edge, or
// ErrTransitionRejected when every candidate's guard refuses.
func (m *Machine[S]) Fire(ctx context.Context, current S, event string, data any) (S, error) {
	var zero S

	candidates, ok := m.transitions[current][event]
	if !ok || len(candidates) == 0 {
		return zero, ErrNoTransition
	}

	// First transition with a passing guard wins
	for _, t := range candidates {
		if t.Guard == nil || t.Guard(ctx, current, event, data) {
			return t.To, nil
		}
	}

	return zero, ErrTransitionRejected
}

// CanFire reports whether Fire would succeed for (current, event).
func (m *Machine[S]) CanFire(ctx context.Context, current S, event string, data any) bool {
	_, err := m.Fire(ctx, current, event, data)
	return err == nil
}
