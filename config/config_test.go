package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `network:
  precision: 1000
  schedule: "@every 2s"
  stations:
    - name: A
      capacity: 4000
      load_unit_size: 50
      queue_limit: 4
    - name: B
      capacity: 8000
      load_unit_size: 50
      queue_limit: 2
inventory:
  type: static
  conf:
    default: 10
    units:
      A: 1970
metrics:
  prometheus_addr: ":9100"
  sinks:
    - type: "nop"
mqtt:
  broker: "tcp://localhost:1883"
  client_id: "cli"
  status_topic: "trains/station"
  qos: 1
  retain: true
logging:
  level: debug
`

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

//nolint:gocyclo
func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", sampleYAML))
	require.NoError(t, err)

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"precision", cfg.Network.Precision, int64(1000)},
		{"schedule", cfg.Network.Schedule, "@every 2s"},
		{"stations", len(cfg.Network.Stations), 2},
		{"station.capacity", cfg.Network.Stations[1].Capacity, int64(8000)},
		{"station.queue_limit", cfg.Network.Stations[0].QueueLimit, int64(4)},
		{"inventory.type", cfg.Inventory.Type, "static"},
		{"metrics.addr", cfg.Metrics.PrometheusAddr, ":9100"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"status_topic", cfg.MQTT.StatusTopic, "trains/station"},
		{"qos", cfg.MQTT.QoS, byte(1)},
		{"retain", cfg.MQTT.Retain, true},
		{"max_retries", cfg.MQTT.MaxRetries, 3},
		{"level", cfg.Logging.Level, "debug"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadJSONDefaults(t *testing.T) {
	data := `{"network":{"stations":[{"name":"A","capacity":100,"load_unit_size":10,"queue_limit":1}]}}`
	cfg, err := Load(writeConfig(t, "config.json", data))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), cfg.Network.Precision)
	assert.Equal(t, "@every 5s", cfg.Network.Schedule)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.MQTT.Enabled())
	assert.Empty(t, cfg.MQTT.StatusTopic)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TRAINBALANCER_NETWORK__PRECISION", "100")
	t.Setenv("TRAINBALANCER_LOGGING__LEVEL", "warn")
	cfg, err := Load(writeConfig(t, "config.yaml", sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, int64(100), cfg.Network.Precision)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
	}{
		{"format", "config.toml", "x = 1"},
		{"no stations", "config.yaml", "network:\n  precision: 10\n"},
		{"schedule", "config.yaml", "network:\n  schedule: \"every now and then\"\n  stations:\n    - name: A\n"},
		{"precision", "config.yaml", "network:\n  precision: -5\n  stations:\n    - name: A\n"},
		{"level", "config.yaml", "network:\n  stations:\n    - name: A\nlogging:\n  level: loud\n"},
		{"qos", "config.yaml", "network:\n  stations:\n    - name: A\nmqtt:\n  broker: tcp://x:1883\n  qos: 3\n"},
		{"duplicate", "config.yaml", "network:\n  stations:\n    - name: A\n    - name: A\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.file, tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
