// Package prometheus provides a Prometheus collector for engine metrics.
//
// [NewExporter] accepts a [shadowid.Engine] and implements
// [prometheus.Collector] over its counter snapshot. [Exporter.Handler]
// returns an [http.Handler] backed by a private registry so nothing leaks
// into the default global one.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry.
//   - Mutate engine state.
package prometheus
