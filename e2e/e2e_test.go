//go:build integration

package e2e

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/trainbalancer/app"
	"github.com/kilianp07/trainbalancer/config"
	"github.com/kilianp07/trainbalancer/core/factory"
	"github.com/kilianp07/trainbalancer/core/network"
	"github.com/kilianp07/trainbalancer/infra/mqtt"
	"github.com/kilianp07/trainbalancer/test/util"
)

const (
	influxOrg    = "e2e_org"
	influxBucket = "e2e_bucket"
	influxToken  = "e2e-token"
)

// startInflux starts an InfluxDB 2.7 container initialised with the e2e
// organisation, bucket and token.
func startInflux(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "e2e",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "e2e-password",
			"DOCKER_INFLUXDB_INIT_ORG":         influxOrg,
			"DOCKER_INFLUXDB_INIT_BUCKET":      influxBucket,
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": influxToken,
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(60 * time.Second),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start influx container: %v", err)
	}
	host, _ := cont.Host(ctx)
	port, _ := cont.MappedPort(ctx, "8086")
	return cont, fmt.Sprintf("http://%s:%s", host, port.Port())
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestServiceEndToEnd(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skipf("docker not installed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	influxCont, influxURL := startInflux(ctx, t)
	defer influxCont.Terminate(context.Background()) //nolint:errcheck
	broker := util.StartMosquitto(ctx, t)

	promAddr := freeAddr(t)
	cfg := &config.Config{
		Network: network.Config{
			Precision: 1000,
			Schedule:  "@every 1s",
			Stations: []network.StationConfig{
				{Name: "A", Capacity: 128000, LoadUnitSize: 8000, QueueLimit: 3},
				{Name: "B", Capacity: 128000, LoadUnitSize: 8000, QueueLimit: 1},
				{Name: "C", Capacity: 97000, LoadUnitSize: 8000, QueueLimit: 2},
				{Name: "D", Capacity: 63000, LoadUnitSize: 8000, QueueLimit: 3},
				{Name: "E", Capacity: 997000, LoadUnitSize: 8000, QueueLimit: 5},
			},
		},
		Inventory: factory.ModuleConfig{Type: "static", Conf: map[string]any{"default": 63000}},
		MQTT:      mqtt.Config{Broker: broker, ClientID: "e2e", StatusTopic: "e2e/station", QoS: 1, Retain: true},
	}
	cfg.Metrics.PrometheusAddr = promAddr
	cfg.Metrics.Sinks = []factory.ModuleConfig{
		{Type: "prometheus"},
		{Type: "influx", Conf: map[string]any{"url": influxURL, "token": influxToken, "org": influxOrg, "bucket": influxBucket}},
	}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())

	svc, err := app.New(cfg)
	require.NoError(t, err)
	defer svc.Close()

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- svc.Run(runCtx) }()

	util.MetricEventually(t, "http://"+promAddr+"/metrics", `station_percentage_stored{station="D"} 1000`, 30*time.Second)

	cli := NewInfluxClient(influxURL, influxOrg, influxBucket, influxToken)
	defer cli.Close()
	require.Eventually(t, func() bool {
		pcts, err := cli.StationValues(ctx, "percentage_stored")
		return err == nil && len(pcts) == 5
	}, 30*time.Second, 500*time.Millisecond)
	pcts, err := cli.StationValues(ctx, "percentage_stored")
	require.NoError(t, err)
	// C and D stay above average so their fill never changes
	assert.Equal(t, int64(649), pcts["C"])
	assert.Equal(t, int64(1000), pcts["D"])

	stop()
	require.NoError(t, <-done)
}
