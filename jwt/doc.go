// Package jwt reads the claims of access tokens held by the client and mints
// tokens for test and demo backends.
//
// # Trust model
//
// The client treats access tokens as opaque bearer strings. [Decoder] reads the
// expiry and identity hints without verifying the signature: the backend is the
// only party that validates tokens. A decoded claim is a scheduling hint, never an
// authorization decision.
//
// # What this package must NOT do
//
//   - Import goSession, store, or gateway.
//   - Use decoded claims for access control.
package jwt
