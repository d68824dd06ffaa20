package metrics

import (
	"errors"

	"github.com/kilianp07/trainbalancer/core/model"
)

// MultiSink fans reports out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordCycle forwards the report to every sink. One failing sink does not
// prevent the others from recording; all errors are joined.
func (m *MultiSink) RecordCycle(r model.CycleReport) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordCycle(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordCycleError forwards to sinks implementing ErrorRecorder.
func (m *MultiSink) RecordCycleError(reason string) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(ErrorRecorder); ok {
			if err := rec.RecordCycleError(reason); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink that holds resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
