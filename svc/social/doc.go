// Package social implements the social publish pipeline.
//
// A publish job loads the post, marks it publishing, then attempts each
// requested platform independently: account lookup, token refresh and the
// adapter's create-post call. A failure on one platform is captured as a
// per-platform result and never aborts the others. After the loop the post
// settles to published (all platforms succeeded) or failed (any platform
// failed, summary message is the first failing platform's error), and an
// audit record with the full result list is appended either way.
//
// Only the post-not-found path escalates to the worker engine for whole-job
// retry.
package social
