// Package store provides the durable key/value persistence behind a session: the
// access token, the refresh token, the cached identity blob, the post-login
// redirect hint, and the open-ended family of draft keys.
//
// # Failure policy
//
// [TokenStore] methods never return errors. Backends log and swallow storage
// failures; identity correctness must not depend on storage reliability. A failed
// read is indistinguishable from a missing key.
//
// # Architecture boundaries
//
// This package owns the [TokenStore] contract, the storage [Keys] layout, and
// three backends: [MemoryStore], [RedisStore] and [SQLiteStore]. It does NOT
// interpret tokens or identities; values are opaque strings.
//
// # What this package must NOT do
//
//   - Import goSession, identity, gateway, or refresh.
//   - Return storage errors to callers.
//   - Sweep keys without a non-empty prefix.
package store
