package mqtt

import (
	"context"
	"fmt"
	"sync"

	"github.com/kilianp07/trainbalancer/core/model"
)

// MockPublisher records status messages in memory. It is used in tests.
type MockPublisher struct {
	mu       sync.Mutex
	Messages map[string]StationStatusMessage
	Reports  int
	Fail     bool
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Messages: make(map[string]StationStatusMessage)}
}

// PublishStatus stores the latest message per station or fails when Fail is set.
func (m *MockPublisher) PublishStatus(_ context.Context, r model.CycleReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return fmt.Errorf("publish failed")
	}
	for _, msg := range StatusMessages(r) {
		m.Messages[msg.Station] = msg
	}
	m.Reports++
	return nil
}

// Last returns the latest message published for station.
func (m *MockPublisher) Last(station string) (StationStatusMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.Messages[station]
	return msg, ok
}
