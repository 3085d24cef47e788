// Package refresh keeps an access token alive.
//
// A Scheduler owns a single pending-timer slot. Arming it with a token expiry
// computes a fire time inside the last safe window before expiry and replaces
// whatever timer was armed before. Two more call sites funnel into the same
// routine: a visibility trigger for a foregrounded client whose token is
// close to expiry, and a heartbeat that polls for tokens about to lapse.
//
// # Concurrency
//
// Every trigger goes through one in-flight guard. While a refresh call is
// running, further triggers join it and observe its result; at most one
// network call is made per burst.
//
// # What this package must NOT do
//
//   - Persist tokens. The refresh Func passed by the owner does that.
//   - Clear the session on a failed refresh. A failure leaves the current
//     token in place and only reports through Hooks.
package refresh
