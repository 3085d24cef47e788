// Package gateway is the network boundary of a client session: login, SSO payload
// normalization, register, refresh, logout, identity fetch, and the two tenant
// verification checks.
//
// # Error model
//
// Every failed call returns a [*Error] whose [Kind] is derived from the HTTP
// status (401/403 unauthorized, 400/409/422 validation, other non-2xx server) or
// from the transport (network). Callers branch on the kind with [KindOf] rather
// than on status codes.
//
// # What this package must NOT do
//
//   - Persist tokens or identities; it only returns them.
//   - Retry calls; retry policy belongs to the refresh scheduler.
//   - Import goSession, store, or refresh.
package gateway
