// Package prometheus provides Prometheus collectors for urlkeeper metrics.
//
// [NewPrometheusExporter] accepts an [urlkeeper.Engine] and exposes an
// [http.Handler] that renders all urlkeeper counters and histograms in
// Prometheus text exposition format. Counter names are prefixed
// urlkeeper_*_total; the single histogram is urlkeeper_refresh_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
