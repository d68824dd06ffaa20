package network

import (
	"fmt"

	"github.com/kilianp07/trainbalancer/core/model"
)

const (
	// DefaultPrecision reports fill levels in per-mille.
	DefaultPrecision = 1000
	// DefaultSchedule runs one cycle every five seconds.
	DefaultSchedule = "@every 5s"
)

// StationConfig describes one named drop-off station.
type StationConfig struct {
	Name         string `json:"name"`
	Capacity     int64  `json:"capacity"`
	LoadUnitSize int64  `json:"load_unit_size"`
	QueueLimit   int64  `json:"queue_limit"`
}

// Point returns the station's hardware parameters.
func (s StationConfig) Point() model.PointConfig {
	return model.PointConfig{Capacity: s.Capacity, LoadUnitSize: s.LoadUnitSize, QueueLimit: s.QueueLimit}
}

// Config defines the stations sharing one resource.
type Config struct {
	Precision int64           `json:"precision"`
	Schedule  string          `json:"schedule"`
	Stations  []StationConfig `json:"stations"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Precision == 0 {
		c.Precision = DefaultPrecision
	}
	if c.Schedule == "" {
		c.Schedule = DefaultSchedule
	}
}

// Validate checks the network shape. Station parameters are checked by the
// allocator when the network is built.
func (c Config) Validate() error {
	if c.Precision <= 0 {
		return fmt.Errorf("precision must be positive, got %d", c.Precision)
	}
	if len(c.Stations) == 0 {
		return fmt.Errorf("at least one station is required")
	}
	seen := make(map[string]struct{}, len(c.Stations))
	for i, s := range c.Stations {
		if s.Name == "" {
			return fmt.Errorf("station %d: name is required", i)
		}
		if _, ok := seen[s.Name]; ok {
			return fmt.Errorf("duplicate station %q", s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	return nil
}
