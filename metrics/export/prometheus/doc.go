// Package prometheus renders goSession controller metrics in Prometheus text
// exposition format.
//
// [NewPrometheusExporter] accepts a [goSession.Controller] and exposes an
// [http.Handler]. Counter names are prefixed gosession_*_total. Labeled
// families such as gosession_refresh_triggers_total share one header and
// split by a single label. The only histogram is
// gosession_refresh_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler.
//   - Mutate controller state.
package prometheus
