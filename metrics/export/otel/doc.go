// Package otel provides OpenTelemetry metric exporter bindings for goSession
// controller counters and histograms.
//
// [NewOTelExporter] registers Int64ObservableCounter instruments for each
// session metric, one attribute-split counter per labeled family, and gauges
// for the refresh latency buckets and sum. A
// single callback reads [goSession.Controller.MetricsSnapshot] on each
// collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider. Callers supply the Meter.
//   - Mutate controller state.
package otel
