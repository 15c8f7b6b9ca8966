// Package otel bridges session manager metrics into an OpenTelemetry
// meter via observable instruments. The exporter registers a single
// callback that snapshots the Manager on each collection cycle.
package otel
