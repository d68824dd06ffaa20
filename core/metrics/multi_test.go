package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/trainbalancer/core/model"
)

type recordSink struct {
	cycles int
	errs   int
	fail   bool
}

func (r *recordSink) RecordCycle(model.CycleReport) error {
	r.cycles++
	if r.fail {
		return errors.New("sink down")
	}
	return nil
}

func (r *recordSink) RecordCycleError(string) error {
	r.errs++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{fail: true}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2, NopSink{})

	err := m.RecordCycle(model.CycleReport{Cycle: 1})
	assert.EqualError(t, err, "sink down")
	assert.Equal(t, 1, s1.cycles)
	assert.Equal(t, 1, s2.cycles)

	assert.NoError(t, m.RecordCycleError("overflow"))
	assert.Equal(t, 1, s1.errs)
	assert.Equal(t, 1, s2.errs)
}
