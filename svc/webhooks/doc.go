// Package webhooks implements the webhook delivery pipeline.
//
// A delivery job looks up the target endpoint, signs the payload with the
// endpoint's secret, makes exactly one POST attempt and appends exactly one
// delivery row recording the outcome. Missing or inactive endpoints and
// non-2xx responses return an error to the engine, which retries with
// backoff up to the queue's attempt limit; every retry appends its own row,
// so a job that fails five times leaves five FAILED rows behind.
package webhooks
