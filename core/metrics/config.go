package metrics

import "github.com/kilianp07/trainbalancer/core/factory"

// Config defines the configured sinks. PrometheusAddr enables the /metrics
// endpoint when not empty.
type Config struct {
	Sinks          []factory.ModuleConfig `json:"sinks"`
	PrometheusAddr string                 `json:"prometheus_addr"`
}
