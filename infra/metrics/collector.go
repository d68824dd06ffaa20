package metrics

import (
	"context"

	coremetrics "github.com/kilianp07/trainbalancer/core/metrics"
	"github.com/kilianp07/trainbalancer/core/model"
	"github.com/kilianp07/trainbalancer/infra/logger"
	"github.com/kilianp07/trainbalancer/internal/eventbus"
)

// StartEventCollector records every report published on bus into sink until
// ctx is canceled or the bus is closed. The returned channel is closed when
// the collector stops.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[model.CycleReport], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case rep, ok := <-sub:
				if !ok {
					return
				}
				if err := sink.RecordCycle(rep); err != nil {
					log.Warnf("collector: record cycle %d: %v", rep.Cycle, err)
				}
			}
		}
	}()
	return done
}
