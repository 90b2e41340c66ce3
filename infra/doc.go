// Package infra holds the adapters to external systems: zerolog logging,
// the Prometheus and InfluxDB metrics sinks and the MQTT run publisher.
package infra
