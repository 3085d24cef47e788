// Package flows contains the orchestrators behind every Controller operation.
//
// Each flow (RunLogin, RunBootstrap, RunVerification, RunRefresh, RunLogout)
// accepts a typed dependency struct of funcs and returns a result struct
// carrying either data or a failure kind. Flows hold no state between calls,
// which keeps every branch of the verification cascade and of bootstrap
// testable with plain fakes.
//
// # Architecture boundaries
//
// Flows call the gateway, the token store, and the scheduler only through
// their Deps. Ownership of those resources stays with the Controller.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goSession (to avoid import cycles).
//   - Return verification failures as errors. The cascade is fail-open.
package flows
