// Package events implements async delivery of session lifecycle events.
//
// # Components
//
//   - [Sink]: interface for event consumers (hub, channel, JSON writer, no-op).
//   - [Dispatcher]: buffered async relay with drop-if-full / block-if-full semantics.
//   - [Hub]: fan-out to subscriber funcs with per-subscription unsubscribe.
//   - [Event]: structured record with id, timestamp, type, user, outcome, metadata.
//
// # Architecture boundaries
//
// This package owns buffering and delivery. It does NOT decide which events to
// emit; that belongs to the Controller.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on session logic.
//   - Import goSession or any sibling internal package.
package events
