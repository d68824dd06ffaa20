// Package metrics defines how cycle reports are exported. Concrete sinks live
// in infra/metrics and register themselves by type name; NewMetricsSink builds
// the configured set, wrapping several sinks in a fan-out sink.
package metrics
