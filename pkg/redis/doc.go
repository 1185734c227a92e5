// Package redis provides connection helpers for the Redis-backed parts of the
// platform, primarily the queue storage.
//
// Connect retries until the server answers a ping or the configured timeout
// elapses, so workers started alongside Redis in a compose stack come up
// cleanly. Healthcheck returns a probe function compatible with readiness
// endpoints.
//
// Configuration is described by the Config struct whose fields are populated
// from environment variables via github.com/caarlos0/env.
package redis
