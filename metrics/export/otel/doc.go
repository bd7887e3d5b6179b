// Package otel binds campusauth engine metrics to an OpenTelemetry Meter.
//
// [NewOTelExporter] registers an Int64ObservableCounter for each engine
// counter and one Int64ObservableGauge per latency bucket. A single callback
// reads Engine.MetricsSnapshot on each collection cycle.
//
// The caller owns the MeterProvider.
package otel
