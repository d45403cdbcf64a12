package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event describes one admission decision. Admitted false means the request
// was queued; a later event with the same RequestID marks its dispatch.
type Event struct {
	Key        string
	RequestID  uuid.UUID
	Admitted   bool
	QueueDepth int
	At         time.Time
}

// Recorder sinks admission events, e.g. to memory counters or Redis.
// Recording is best-effort: the scheduler logs and drops errors instead of
// failing the request.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
}
