// Package internaldefs holds the metric name and bucket definitions
// shared by the exporter implementations.
//
// Counter and histogram definitions live here so the Prometheus and OTel
// exporters always agree on metric names and bucket boundaries.
package internaldefs
