// Package stripe backs the gate's billing seams with the Stripe API: checkout
// sessions, customer records as the identity ledger, and live subscription
// status.
//
// Customer metadata is the only storage this system writes. Updates go
// through Stripe's per-key metadata merge so keys owned by other flows are
// never clobbered.
package stripe
