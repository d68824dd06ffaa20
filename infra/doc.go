// Package infra contains technical adapters: the zerolog logger, the
// Prometheus and InfluxDB sinks and the MQTT status publisher. These
// packages depend only on the interfaces defined in the core packages.
package infra
