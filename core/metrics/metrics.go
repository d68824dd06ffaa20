package metrics

import "github.com/kilianp07/trainbalancer/core/model"

// MetricsSink records the outcome of every network cycle.
type MetricsSink interface {
	RecordCycle(report model.CycleReport) error
}

// ErrorRecorder is implemented by sinks that count failed cycles.
type ErrorRecorder interface {
	RecordCycleError(reason string) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordCycle(model.CycleReport) error { return nil }
func (NopSink) RecordCycleError(string) error       { return nil }
