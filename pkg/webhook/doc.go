// Package webhook provides HMAC-SHA256 payload signing and single-attempt
// signed webhook delivery.
//
// A delivery POSTs the raw JSON payload with three headers:
//
//	X-Webhook-Signature: hex HMAC-SHA256 of the body
//	X-Webhook-Event:     the domain event name
//	X-Webhook-Delivery:  the id of the job performing the delivery
//
// The sender makes exactly one attempt per call. Retrying is owned by the
// job engine so that every attempt, including retries, can be recorded as
// its own delivery log entry.
package webhook
