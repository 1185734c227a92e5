// Package statemachine provides explicit, stateless transition tables for
// status-bearing entities.
//
// Each entity's valid transition set is declared once as a table of
// (from-state, event, to-state) edges with optional guards. Pipelines that
// mutate entity status resolve edges through the table instead of writing
// status fields unconditionally, so an invalid transition is an error rather
// than a silent overwrite.
//
// The machine holds no current state. Callers pass the status they just read
// from the store, which is what makes optimistic check-then-act updates
// against a shared store possible.
package statemachine
