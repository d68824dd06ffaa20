// Package util holds helpers shared by the integration suites.
package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const mosquittoConf = "listener 1883\nallow_anonymous true\npersistence false\n"

// MetricEventually fails t unless the scrape at url contains substr within
// timeout.
func MetricEventually(t testing.TB, url, substr string, timeout time.Duration) {
	t.Helper()
	require.Eventually(t, func() bool {
		resp, err := http.Get(url) //nolint:gosec,noctx
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		return err == nil && strings.Contains(string(body), substr)
	}, timeout, 100*time.Millisecond, "metric %q never scraped", substr)
}

// StartMosquitto runs a throwaway broker for the lifetime of t and returns
// its URL. The test is skipped when no container runtime is reachable.
func StartMosquitto(ctx context.Context, t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mosquitto.conf")
	require.NoError(t, os.WriteFile(path, []byte(mosquittoConf), 0o644))

	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "eclipse-mosquitto:2.0",
			ExposedPorts: []string{"1883/tcp"},
			WaitingFor:   wait.ForListeningPort("1883/tcp"),
			Files: []tc.ContainerFile{{
				HostFilePath:      path,
				ContainerFilePath: "/mosquitto/config/mosquitto.conf",
				FileMode:          0o644,
			}},
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("mosquitto unavailable: %v", err)
	}
	t.Cleanup(func() { _ = cont.Terminate(context.Background()) })

	host, err := cont.Host(ctx)
	require.NoError(t, err)
	port, err := cont.MappedPort(ctx, "1883")
	require.NoError(t, err)
	broker := fmt.Sprintf("tcp://%s:%s", host, port.Port())

	// the port opens before the broker accepts sessions
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("trainbalancer-ready")
	require.Eventually(t, func() bool {
		cli := paho.NewClient(opts)
		tok := cli.Connect()
		if !tok.WaitTimeout(time.Second) || tok.Error() != nil {
			return false
		}
		cli.Disconnect(100)
		return true
	}, 5*time.Second, 50*time.Millisecond)
	return broker
}
