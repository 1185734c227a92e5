// Package provider defines the platform adapter capability interface and the
// supporting pieces pipelines need to talk to external platforms: the
// adapter registry, connected account storage, token encryption at rest and
// the token refresh subroutine.
//
// Each concrete platform (Facebook, Instagram, Google Business, Eventbrite,
// Meetup) implements Adapter against its own REST API. Pipelines select the
// adapter once by provider id from a Registry and then only call capability
// methods; they never branch on provider names.
//
// TokenService.EnsureFresh is the refresh subroutine shared by the publish
// and sync pipelines. It decrypts stored tokens, refreshes them through the
// adapter when the known expiry has passed, and persists new credentials
// before the caller makes any further adapter call. Refresh failure for one
// account is the caller's per-platform failure; it never aborts sibling
// platforms in the same job.
package provider
