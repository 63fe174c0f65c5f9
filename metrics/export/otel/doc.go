// Package otel provides OpenTelemetry metric bindings for engine counters.
//
// [NewExporter] registers one Int64ObservableCounter per engine counter and
// a single callback that reads [shadowid.Engine.MetricsSnapshot] on each
// collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider. Callers supply the Meter.
//   - Mutate engine state.
package otel
