// Package infra groups the adapters that connect the planner host to the
// outside: zerolog logging, Prometheus and InfluxDB sinks, Sentry, the Paho
// MQTT client and the activity stores.
package infra
