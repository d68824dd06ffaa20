package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/trainbalancer/config"
	"github.com/kilianp07/trainbalancer/core/factory"
	"github.com/kilianp07/trainbalancer/core/network"
	"github.com/kilianp07/trainbalancer/infra/mqtt"
)

func testConfig(schedule string) *config.Config {
	cfg := &config.Config{
		Network: network.Config{
			Precision: 1000,
			Schedule:  schedule,
			Stations: []network.StationConfig{
				{Name: "A", Capacity: 128000, LoadUnitSize: 8000, QueueLimit: 3},
				{Name: "B", Capacity: 128000, LoadUnitSize: 8000, QueueLimit: 1},
				{Name: "C", Capacity: 97000, LoadUnitSize: 8000, QueueLimit: 2},
				{Name: "D", Capacity: 63000, LoadUnitSize: 8000, QueueLimit: 3},
				{Name: "E", Capacity: 997000, LoadUnitSize: 8000, QueueLimit: 5},
			},
		},
		Inventory: factory.ModuleConfig{Type: "static", Conf: map[string]any{"default": 63000}},
	}
	cfg.SetDefaults()
	return cfg
}

func TestServiceStep(t *testing.T) {
	pub := mqtt.NewMockPublisher()
	svc, err := New(testConfig(""), WithPublisher(pub))
	require.NoError(t, err)
	defer svc.Close()

	ctx := context.Background()
	first, err := svc.Step(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2696), first.NextTotal)

	second, err := svc.Step(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(539), second.Average)
	assert.Equal(t, int64(7), second.Recommended())
	assert.Equal(t, 2, pub.Reports)
	msg, ok := pub.Last("E")
	require.True(t, ok)
	assert.Equal(t, int64(5), msg.VehiclesRecommended)
}

func TestServiceRunPublishesStatus(t *testing.T) {
	pub := mqtt.NewMockPublisher()
	svc, err := New(testConfig("@every 1s"), WithPublisher(pub))
	require.NoError(t, err)
	defer svc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, ok := pub.Last("E")
		return ok
	}, 5*time.Second, 50*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop")
	}
	assert.GreaterOrEqual(t, svc.Network.Cycles(), uint64(1))
}

func TestServiceRunBadSchedule(t *testing.T) {
	cfg := testConfig("")
	svc, err := New(cfg)
	require.NoError(t, err)
	defer svc.Close()
	cfg.Network.Schedule = "sometimes"
	assert.Error(t, svc.Run(context.Background()))
}

func TestServiceNewErrors(t *testing.T) {
	cfg := testConfig("")
	cfg.Inventory = factory.ModuleConfig{Type: "missing"}
	_, err := New(cfg)
	assert.Error(t, err)

	cfg = testConfig("")
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "missing"}}
	_, err = New(cfg)
	assert.Error(t, err)

	cfg = testConfig("")
	cfg.Network.Stations[0].LoadUnitSize = 0
	_, err = New(cfg)
	assert.Error(t, err)
}
