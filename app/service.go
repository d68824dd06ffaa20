package app

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/kilianp07/trainbalancer/config"
	coremetrics "github.com/kilianp07/trainbalancer/core/metrics"
	"github.com/kilianp07/trainbalancer/core/model"
	coremqtt "github.com/kilianp07/trainbalancer/core/mqtt"
	"github.com/kilianp07/trainbalancer/core/network"
	"github.com/kilianp07/trainbalancer/infra/logger"
	"github.com/kilianp07/trainbalancer/infra/metrics"
	"github.com/kilianp07/trainbalancer/infra/mqtt"
	"github.com/kilianp07/trainbalancer/internal/eventbus"
)

// Service runs network cycles on a schedule and fans reports out to the
// metrics sinks and the status publisher.
type Service struct {
	Network *network.Network

	cfg       *config.Config
	sink      coremetrics.MetricsSink
	bus       *eventbus.TypedBus[model.CycleReport]
	publisher coremqtt.StatusPublisher
	log       logger.Logger
}

// Option customises a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	inventory network.InventorySource
	publisher coremqtt.StatusPublisher
	sink      coremetrics.MetricsSink
}

// WithInventory replaces the configured inventory source.
func WithInventory(src network.InventorySource) Option {
	return func(o *serviceOptions) { o.inventory = src }
}

// WithPublisher replaces the MQTT status publisher.
func WithPublisher(p coremqtt.StatusPublisher) Option {
	return func(o *serviceOptions) { o.publisher = p }
}

// WithSink replaces the configured metrics sinks.
func WithSink(s coremetrics.MetricsSink) Option {
	return func(o *serviceOptions) { o.sink = s }
}

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	var o serviceOptions
	for _, opt := range opts {
		opt(&o)
	}
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	logg := logger.New("service")

	inv := o.inventory
	if inv == nil {
		var err error
		if inv, err = network.NewInventory(cfg.Inventory); err != nil {
			return nil, fmt.Errorf("inventory: %w", err)
		}
	}
	sink := o.sink
	if sink == nil {
		var err error
		if sink, err = coremetrics.NewMetricsSink(cfg.Metrics.Sinks); err != nil {
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
	}
	pub := o.publisher
	if pub == nil && cfg.MQTT.Enabled() {
		p, err := mqtt.NewPahoPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		pub = p
	}

	bus := eventbus.NewTyped[model.CycleReport]()
	net, err := network.New(cfg.Network,
		network.WithInventory(inv),
		network.WithSink(sink),
		network.WithBus(bus),
		network.WithLogger(logger.New("network")),
	)
	if err != nil {
		return nil, fmt.Errorf("network: %w", err)
	}
	return &Service{Network: net, cfg: cfg, sink: sink, bus: bus, publisher: pub, log: logg}, nil
}

// Step runs a single cycle immediately and publishes its status directly,
// without going through the bus.
func (s *Service) Step(ctx context.Context) (model.CycleReport, error) {
	rep, err := s.Network.Cycle(ctx)
	if err != nil {
		return rep, err
	}
	if s.publisher != nil {
		if err := s.publisher.PublishStatus(ctx, rep); err != nil {
			s.log.Warnf("publish status of cycle %d: %v", rep.Cycle, err)
		}
	}
	return rep, nil
}

// Run schedules cycles and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	var published <-chan struct{}
	if s.publisher != nil {
		published = metrics.StartEventCollector(ctx, s.bus, statusSink{ctx: ctx, pub: s.publisher}, logger.New("status"))
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{s.log})))
	if _, err := c.AddFunc(s.cfg.Network.Schedule, func() { s.runCycle(ctx) }); err != nil {
		return fmt.Errorf("schedule %q: %w", s.cfg.Network.Schedule, err)
	}
	c.Start()
	s.log.Infof("scheduler started with %d stations on %q", len(s.cfg.Network.Stations), s.cfg.Network.Schedule)

	<-ctx.Done()
	<-c.Stop().Done()
	if published != nil {
		<-published
	}
	s.log.Infof("scheduler stopped after %d cycles", s.Network.Cycles())
	return nil
}

func (s *Service) runCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	rep, err := s.Network.Cycle(ctx)
	if err != nil {
		s.log.Errorf("cycle failed: %v", err)
		return
	}
	s.log.Infof("cycle %d: average %d, %d vehicles recommended", rep.Cycle, rep.Average, rep.Recommended())
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if d, ok := s.publisher.(interface{ Disconnect() }); ok {
		d.Disconnect()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	return nil
}

// statusSink lets the metrics collector drive the status publisher.
type statusSink struct {
	ctx context.Context
	pub coremqtt.StatusPublisher
}

func (s statusSink) RecordCycle(r model.CycleReport) error {
	return s.pub.PublishStatus(s.ctx, r)
}

type cronLogger struct{ log logger.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugf("cron: %s %v", msg, keysAndValues)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorf("cron: %s: %v %v", msg, err, keysAndValues)
}
