// Package prometheus exposes campusauth engine metrics to Prometheus.
//
// [Collector] implements prometheus.Collector by reading
// Engine.MetricsSnapshot on every scrape. Counters are named
// campusauth_*_total; login, refresh and validate latencies are exported as
// campusauth_*_latency_seconds histograms.
//
// Nothing is registered globally. Register the Collector on a registry of
// your choice, or mount [Handler] which uses a private registry.
package prometheus
