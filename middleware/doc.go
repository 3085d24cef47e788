// Package middleware exposes http.RoundTripper middleware that authorizes
// outgoing API calls with the session held by a goSession.Controller.
//
// # Transports
//
//   - [Authorize] wraps a RoundTripper: it attaches the current access token
//     and, when the API answers 401, refreshes the session once and replays
//     the request.
//   - [NewClient] returns an *http.Client using [Authorize].
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Controller calls. It does NOT
// read or write the token store and does not decide when a session ends: a
// failed refresh is reported to the caller and the Controller keeps its own
// policy.
//
// # What this package must NOT do
//
//   - Parse or create JWTs.
//   - Access the token store directly.
//   - Retry more than once per request.
package middleware
