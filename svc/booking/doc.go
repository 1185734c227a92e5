// Package booking implements the space booking hold expiry pipeline.
//
// When a request enters needs_payment, a hold expiry job is scheduled for
// the end of the hold window. The handler re-checks the request's current
// state on every branch: a missing request, a status that moved on, or a
// re-extended hold all make the job a no-op. Only a request still in
// needs_payment with a lapsed hold transitions to expired, with an audit
// record. Re-delivery of the same job is therefore always safe.
package booking
