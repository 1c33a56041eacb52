// Package metrics defines the sinks that observe planning runs. Sinks such
// as PromSink and InfluxSink (see infra/metrics) record run outcomes, activity
// placements and price ingestion, and can be combined with NewMultiSink.
// NewMetricsSink returns a MultiSink automatically when several sinks are
// configured. Optional recorder interfaces are discovered by type assertion,
// so a sink only implements what it can store.
package metrics
