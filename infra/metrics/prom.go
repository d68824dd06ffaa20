package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/trainbalancer/core/metrics"
	"github.com/kilianp07/trainbalancer/core/model"
)

// PromSink exposes the latest cycle as Prometheus gauges.
type PromSink struct {
	percentage  *prometheus.GaugeVec
	recommended *prometheus.GaugeVec
	enRoute     *prometheus.GaugeVec
	average     prometheus.Gauge
	imbalance   prometheus.Gauge
	cycles      prometheus.Counter
	failures    *prometheus.CounterVec
}

// NewPromSink registers the metrics on the default Prometheus registerer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers the metrics on reg. A nil registerer
// defaults to the global one. Collectors already registered by a previous
// sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		percentage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "station_percentage_stored",
			Help: "Fill level of the station including vehicles en route, scaled by precision",
		}, []string{"station"}),
		recommended: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "station_vehicles_recommended",
			Help: "Vehicles recommended for the station after the last cycle",
		}, []string{"station"}),
		enRoute: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "station_vehicles_en_route",
			Help: "Vehicles en route to the station when the last cycle started",
		}, []string{"station"}),
		average: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "network_average_percentage",
			Help: "Network average fill level used for gating",
		}),
		imbalance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "network_imbalance",
			Help: "Standard deviation of station fill levels",
		}),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "network_cycles_total",
			Help: "Number of completed cycles",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "network_cycle_failures_total",
			Help: "Number of aborted cycles by reason",
		}, []string{"reason"}),
	}
	var err error
	if s.percentage, err = register(reg, s.percentage); err != nil {
		return nil, err
	}
	if s.recommended, err = register(reg, s.recommended); err != nil {
		return nil, err
	}
	if s.enRoute, err = register(reg, s.enRoute); err != nil {
		return nil, err
	}
	if s.average, err = register(reg, s.average); err != nil {
		return nil, err
	}
	if s.imbalance, err = register(reg, s.imbalance); err != nil {
		return nil, err
	}
	if s.cycles, err = register(reg, s.cycles); err != nil {
		return nil, err
	}
	if s.failures, err = register(reg, s.failures); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordCycle sets the gauges from the report.
func (s *PromSink) RecordCycle(r model.CycleReport) error {
	for _, st := range r.Stations {
		s.percentage.WithLabelValues(st.Name).Set(float64(st.Result.PercentageStored))
		s.recommended.WithLabelValues(st.Name).Set(float64(st.Result.VehiclesRecommended))
		s.enRoute.WithLabelValues(st.Name).Set(float64(st.EnRouteBefore))
	}
	s.average.Set(float64(r.Average))
	s.imbalance.Set(r.Imbalance)
	s.cycles.Inc()
	return nil
}

// RecordCycleError counts an aborted cycle.
func (s *PromSink) RecordCycleError(reason string) error {
	s.failures.WithLabelValues(reason).Inc()
	return nil
}
