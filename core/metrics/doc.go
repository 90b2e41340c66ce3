// Package metrics defines the sink interface solve runs are reported to.
// Implementations live in infra/metrics and register themselves by name;
// NewMetricsSink builds them from configuration and fans out to several with
// a MultiSink.
package metrics
