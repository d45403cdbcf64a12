package stats

import (
	"context"
	"sync"

	"github.com/osintkit/platform-scheduler/scheduler"
)

// ensure that MemoryRecorder satisfies the Recorder interface
var _ scheduler.Recorder = &MemoryRecorder{}

// Counters aggregates admission decisions for a key or in total.
type Counters struct {
	Admitted int64
	Queued   int64
}

// MemoryRecorder keeps admission counters in process memory. Useful for
// tests and development; it never expires anything.
type MemoryRecorder struct {
	mu     sync.Mutex
	total  Counters
	byKey  map[string]Counters
	events []scheduler.Event

	capture bool
}

type MemoryOption func(*MemoryRecorder)

// WithEventCapture makes the recorder retain every raw event in order, not
// just the counters.
func WithEventCapture(capture bool) MemoryOption {
	return func(r *MemoryRecorder) { r.capture = capture }
}

func NewMemoryRecorder(opts ...MemoryOption) *MemoryRecorder {
	r := &MemoryRecorder{
		byKey: make(map[string]Counters),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *MemoryRecorder) Record(_ context.Context, ev scheduler.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.byKey[ev.Key]
	if ev.Admitted {
		r.total.Admitted++
		c.Admitted++
	} else {
		r.total.Queued++
		c.Queued++
	}
	r.byKey[ev.Key] = c

	if r.capture {
		r.events = append(r.events, ev)
	}
	return nil
}

func (r *MemoryRecorder) Total() Counters {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

func (r *MemoryRecorder) ByKey() map[string]Counters {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]Counters, len(r.byKey))
	for k, v := range r.byKey {
		out[k] = v
	}
	return out
}

func (r *MemoryRecorder) Events() []scheduler.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]scheduler.Event, len(r.events))
	copy(out, r.events)
	return out
}
