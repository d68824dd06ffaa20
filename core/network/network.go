package network

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/trainbalancer/core/balancer"
	"github.com/kilianp07/trainbalancer/core/logger"
	"github.com/kilianp07/trainbalancer/core/metrics"
	"github.com/kilianp07/trainbalancer/core/model"
	"github.com/kilianp07/trainbalancer/internal/eventbus"
)

// Station is one named drop-off point and the vehicle state the network
// tracks for it between cycles.
type Station struct {
	Name             string
	Allocator        balancer.Allocator
	EnRoute          int64
	StoppedVehicleID int64
}

// Network evaluates every station once per cycle and carries the summed
// percentages from one cycle into the next.
type Network struct {
	mu        sync.Mutex
	precision int64
	stations  []*Station
	index     map[string]*Station
	total     int64
	cycle     uint64

	inventory InventorySource
	sink      metrics.MetricsSink
	bus       *eventbus.TypedBus[model.CycleReport]
	log       logger.Logger
	now       func() time.Time
}

// Option customises a Network.
type Option func(*Network)

// WithInventory sets where local unit counts come from.
func WithInventory(src InventorySource) Option {
	return func(n *Network) { n.inventory = src }
}

// WithSink records every cycle report.
func WithSink(s metrics.MetricsSink) Option {
	return func(n *Network) { n.sink = s }
}

// WithBus publishes every cycle report on bus.
func WithBus(bus *eventbus.TypedBus[model.CycleReport]) Option {
	return func(n *Network) { n.bus = bus }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(n *Network) { n.log = l }
}

// WithClock overrides time.Now for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(n *Network) { n.now = now }
}

// New builds a Network from cfg. Every station's parameters are validated.
func New(cfg Config, opts ...Option) (*Network, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := &Network{
		precision: cfg.Precision,
		index:     make(map[string]*Station, len(cfg.Stations)),
		inventory: StaticInventory{},
		sink:      metrics.NopSink{},
		log:       nopLogger{},
		now:       time.Now,
	}
	for _, sc := range cfg.Stations {
		alloc, err := balancer.New(sc.Point())
		if err != nil {
			return nil, fmt.Errorf("station %s: %w", sc.Name, err)
		}
		st := &Station{Name: sc.Name, Allocator: alloc}
		n.stations = append(n.stations, st)
		n.index[sc.Name] = st
	}
	for _, o := range opts {
		o(n)
	}
	return n, nil
}

// Total returns the network total that will feed the next cycle.
func (n *Network) Total() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.total
}

// Cycles returns how many cycles have been committed.
func (n *Network) Cycles() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.cycle
}

// Precision returns the percentage scale.
func (n *Network) Precision() int64 { return n.precision }

// Stations returns a copy of the tracked station state.
func (n *Network) Stations() []Station {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Station, len(n.stations))
	for i, s := range n.stations {
		out[i] = *s
	}
	return out
}

// Cycle evaluates every station concurrently against the previous total,
// then commits all results at once. When any station fails nothing is
// committed and the error is returned.
func (n *Network) Cycle(ctx context.Context) (model.CycleReport, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	prevTotal := n.total
	decisions := make([]balancer.Decision, len(n.stations))
	statuses := make([]model.StationStatus, len(n.stations))

	g, gctx := errgroup.WithContext(ctx)
	for i, st := range n.stations {
		i, st := i, st
		g.Go(func() error {
			units, err := n.inventory.UnitsAt(gctx, st.Name)
			if err != nil {
				return fmt.Errorf("station %s: inventory: %w", st.Name, err)
			}
			d, err := st.Allocator.Decide(model.CycleObservation{
				Precision:              n.precision,
				PointCount:             int64(len(n.stations)),
				NetworkTotalPercentage: prevTotal,
				LocalUnitsStored:       units,
				VehiclesEnRoute:        st.EnRoute,
				StoppedVehicleID:       st.StoppedVehicleID,
			})
			if err != nil {
				return fmt.Errorf("station %s: %w", st.Name, err)
			}
			decisions[i] = d
			statuses[i] = model.StationStatus{
				Name:             st.Name,
				Config:           st.Allocator.Config(),
				UnitsStored:      units,
				EnRouteBefore:    st.EnRoute,
				StoppedVehicleID: st.StoppedVehicleID,
				Result:           d.CycleResult,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.CycleReport{}, n.abort(err)
	}

	var next int64
	pcts := make([]float64, len(decisions))
	for i, d := range decisions {
		if next+d.PercentageStored < next {
			return model.CycleReport{}, n.abort(fmt.Errorf("network total: %w", balancer.ErrOverflow))
		}
		next += d.PercentageStored
		pcts[i] = float64(d.PercentageStored)
	}

	n.cycle++
	n.total = next
	for i, st := range n.stations {
		// an ineligible station keeps the vehicles already assigned to it
		if decisions[i].Eligible() {
			st.EnRoute = decisions[i].VehiclesRecommended
		}
		statuses[i].EnRouteAfter = st.EnRoute
	}

	report := model.CycleReport{
		ID:           uuid.NewString(),
		Cycle:        n.cycle,
		Time:         n.now(),
		Precision:    n.precision,
		NetworkTotal: prevTotal,
		NextTotal:    next,
		Average:      decisions[0].Average,
		Imbalance:    stat.PopStdDev(pcts, nil),
		Stations:     statuses,
	}
	n.log.Debugw("cycle complete", map[string]any{
		"cycle":       report.Cycle,
		"total":       report.NetworkTotal,
		"next_total":  report.NextTotal,
		"average":     report.Average,
		"recommended": report.Recommended(),
	})
	if err := n.sink.RecordCycle(report); err != nil {
		n.log.Warnf("record cycle %d: %v", report.Cycle, err)
	}
	if n.bus != nil {
		n.bus.Publish(report)
	}
	return report, nil
}

// Stop marks vehicleID as stopped and unloading at the named station. The
// vehicle must already be counted en route.
func (n *Network) Stop(name string, vehicleID int64) error {
	if vehicleID == 0 {
		return fmt.Errorf("vehicle id 0 is reserved")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	st, ok := n.index[name]
	if !ok {
		return fmt.Errorf("unknown station %q", name)
	}
	if st.StoppedVehicleID != 0 {
		return fmt.Errorf("station %s: vehicle %d already stopped", name, st.StoppedVehicleID)
	}
	if st.EnRoute == 0 {
		return fmt.Errorf("station %s: no vehicle en route", name)
	}
	st.StoppedVehicleID = vehicleID
	return nil
}

// Depart releases the stopped vehicle at the named station.
func (n *Network) Depart(name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	st, ok := n.index[name]
	if !ok {
		return fmt.Errorf("unknown station %q", name)
	}
	if st.StoppedVehicleID == 0 {
		return fmt.Errorf("station %s: no stopped vehicle", name)
	}
	st.StoppedVehicleID = 0
	st.EnRoute--
	return nil
}

// abort logs err and counts the failed cycle. Nothing is committed.
func (n *Network) abort(err error) error {
	n.log.Errorf("cycle %d aborted: %v", n.cycle+1, err)
	if rec, ok := n.sink.(metrics.ErrorRecorder); ok {
		_ = rec.RecordCycleError(errorReason(err))
	}
	return err
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, balancer.ErrOverflow):
		return "overflow"
	case errors.Is(err, balancer.ErrInvalidObservation):
		return "invalid_observation"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "inventory"
	}
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
