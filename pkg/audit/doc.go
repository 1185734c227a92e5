// Package audit provides an append-only audit trail for pipeline outcomes.
//
// Every pipeline run appends one event carrying the action, the affected
// entity and the full per-platform/per-provider result detail in Metadata.
// The entity's own status field only surfaces a single summary error; the
// audit log is where the complete picture lives.
package audit
