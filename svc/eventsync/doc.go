// Package eventsync implements the event export pipeline.
//
// An export run marks the record SYNCING, then attempts the create-event
// call on every connected event provider account independently. Successes
// append external ids; failures are written into SyncData under the provider
// key without aborting the loop. After the loop the record always settles to
// SUCCESS: the aggregate status reflects pipeline completion, and callers
// read per-provider outcomes from SyncData. Only an error outside the loop,
// like a missing record, produces FAILED with LastSyncError.
//
// Import is deliberately a stub returning empty results.
package eventsync
