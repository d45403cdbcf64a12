package scheduler

import (
	"fmt"
	"time"
)

// Status is a point-in-time view of one key's quota and queue.
type Status struct {
	Used        uint64
	Remaining   uint64
	Limit       uint64
	Window      time.Duration
	ResetAt     *time.Time // when the oldest admission expires; nil if idle
	QueueLength int
}

// Status reports the current window usage for key. It returns ErrUnknownKey
// for keys that were never initialized.
func (s *Scheduler) Status(key string) (*Status, error) {
	ks := s.state(key)
	if ks == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return s.snapshot(ks), nil
}

// AllStatuses reports the current window usage for every initialized key.
func (s *Scheduler) AllStatuses() map[string]*Status {
	s.mu.RLock()
	states := make(map[string]*keyState, len(s.keys))
	for key, ks := range s.keys {
		states[key] = ks
	}
	s.mu.RUnlock()

	out := make(map[string]*Status, len(states))
	for key, ks := range states {
		out[key] = s.snapshot(ks)
	}
	return out
}

func (s *Scheduler) snapshot(ks *keyState) *Status {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	used := ks.activeCount(s.now())
	st := &Status{
		Used:        used,
		Limit:       ks.limit,
		Window:      ks.window,
		QueueLength: ks.queueLen(),
	}
	if used < ks.limit {
		st.Remaining = ks.limit - used
	}
	if len(ks.admitted) > 0 {
		reset := ks.admitted[0].Add(ks.window)
		st.ResetAt = &reset
	}
	return st
}
