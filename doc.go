// Package goSession is a client-resident identity and session lifecycle
// manager for a multi-role platform. It holds the signed-in identity, keeps
// the access token alive ahead of its expiry, and resolves which dashboard a
// user lands on, including the tenant verification cascade.
//
// A [Controller] is built with [Builder] and is safe for concurrent use.
// Independent controllers share no global state.
//
// # Architecture boundaries
//
// goSession is the public surface. It exposes [Controller], [Builder],
// [Config], and value types (Identity, Session, State, Event). Flow
// orchestration, event dispatch and the fake clock live under internal/.
// The network boundary is the gateway package, persistence is the store
// package, and renewal timing is the refresh package.
//
// # What this package must NOT do
//
//   - Verify token signatures. Tokens are opaque apart from their exp claim.
//   - Let a storage failure change identity state. Store writes are
//     fire-and-forget.
//   - Start a second refresh while one is in flight, or persist a refresh
//     result after the session it belonged to was replaced or cleared.
//   - Fail Logout. Local state is cleared whatever the server answers.
package goSession
