// Package metrics implements the planning metrics sinks backed by Prometheus
// and InfluxDB, registers them with the core sink factory and bridges the
// plan event bus to a sink.
package metrics
