package mqtt

import (
	"context"

	"github.com/kilianp07/trainbalancer/core/model"
)

// StatusPublisher pushes the outcome of a cycle to the dispatch side.
type StatusPublisher interface {
	// PublishStatus sends one status message per station in the report.
	PublishStatus(ctx context.Context, report model.CycleReport) error
}
