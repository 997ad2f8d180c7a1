// Package stage defines the contract between the pipeline controller and
// the individual workflow stages.
package stage

import (
	"context"

	"ytscribe/internal/queue"
)

// Handler describes the contract the pipeline controller needs from each stage.
type Handler interface {
	Prepare(context.Context, *queue.Run) error
	Execute(context.Context, *queue.Run) error
	HealthCheck(context.Context) Health
}
