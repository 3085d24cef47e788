// Package identity holds the client-side identity and session model shared by the
// controller, the gateway, and the flow orchestrators.
//
// # Merge policy
//
// Two merges exist and they are not interchangeable. [Strengthen] is the
// caller-facing update: it only ever adds information, so empty strings, nil and
// false values in the patch are ignored. [Overlay] is the server-facing merge used
// at bootstrap: the backend is authoritative, so explicit false values win.
//
// # Architecture boundaries
//
// This package is a leaf. It owns value types, the merges, and the JSON form of the
// cached identity blob.
//
// # What this package must NOT do
//
//   - Import goSession, gateway, store, or refresh.
//   - Perform I/O.
package identity
