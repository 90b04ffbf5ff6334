// Package gate implements a billing-backed identity and access gate: checkout
// verification, idempotent account provisioning, credential authentication,
// session issuance, and per-request entitlement re-checking, all without a
// dedicated user database. The billing provider's customer ledger is the sole
// system of record.
//
// Identity lifecycle:
//   - A customer completes checkout through the billing provider. The checkout
//     reference is the only proof of purchase this package ever sees.
//   - AccountProvisioner attaches password credentials to the linked customer
//     record exactly once. The persisted password hash acts as a write-once
//     guard, so a retried or double-submitted provisioning yields a conflict
//     instead of silently re-hashing credentials.
//   - Auther authenticates email+password against the ledger and re-derives
//     entitlement from live subscription status before issuing a session.
//
// Sessions:
//   - TokenService signs a self-contained JWT carrying subject and email with
//     a fixed validity window. There is no server-side session store; the token
//     is the only record, and logout merely clears the client cookie.
//   - middleware/gateware guards protected routes. It re-validates the token
//     AND re-fetches the identity record and live subscription status on every
//     request: a valid session never implies current entitlement.
//
// The billing provider is isolated behind the IdentityStore, CheckoutResolver,
// CheckoutStarter, and SubscriptionVerifier seams; provider/stripe holds the
// only implementation.
package gate
