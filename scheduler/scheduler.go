// Package scheduler enforces per-platform sliding-window quotas over opaque
// asynchronous tasks. Requests over quota are queued and dispatched in FIFO
// order as capacity frees up; independent platform keys never block each
// other.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/osintkit/platform-scheduler/log"
)

var (
	// ErrUnknownKey reports a Schedule or Status call against a key that was
	// never initialized.
	ErrUnknownKey = errors.New("scheduler: unknown platform key")

	// ErrInvalidWindow reports a window configuration that could never open
	// a slot (zero limit or non-positive duration).
	ErrInvalidWindow = errors.New("scheduler: invalid window configuration")
)

// Task is a zero-argument operation supplied by the caller, typically a
// wrapped third-party API call. Its result is opaque to the scheduler.
type Task func() (interface{}, error)

// Scheduler owns the per-key window state and queues. Construct with New;
// the zero value is not usable.
type Scheduler struct {
	mu   sync.RWMutex
	keys map[string]*keyState

	now      func() time.Time
	after    func(time.Duration) <-chan time.Time
	recorder Recorder
}

type Option func(*Scheduler)

// WithClock replaces the time source, e.g. for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithTimer replaces the wait mechanism the drain loop sleeps on.
func WithTimer(after func(time.Duration) <-chan time.Time) Option {
	return func(s *Scheduler) { s.after = after }
}

// WithRecorder attaches a best-effort sink for admission events.
func WithRecorder(r Recorder) Option {
	return func(s *Scheduler) { s.recorder = r }
}

func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		keys:  make(map[string]*keyState),
		now:   time.Now,
		after: time.After,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize registers a key with its quota. Re-initializing an existing key
// is a no-op so live counters and queued requests are never clobbered.
func (s *Scheduler) Initialize(key string, limit uint64, window time.Duration) error {
	if limit == 0 || window <= 0 {
		return fmt.Errorf("%w: key %q needs limit > 0 and window > 0, got limit=%d window=%v",
			ErrInvalidWindow, key, limit, window)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.keys[key]; ok {
		return nil
	}
	s.keys[key] = &keyState{limit: limit, window: window}
	return nil
}

func (s *Scheduler) state(key string) *keyState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys[key]
}

// Schedule runs task under key's quota and blocks until its outcome. If the
// window has capacity the task runs immediately on the calling goroutine;
// otherwise it is queued and executed by the key's drain loop in FIFO order.
// A slot is consumed at admission, before the task runs and regardless of
// whether it succeeds.
//
// ctx bounds only how long the caller waits. A queued task still runs once
// dispatched; its outcome is simply dropped if the caller already returned.
func (s *Scheduler) Schedule(ctx context.Context, key string, task Task) (interface{}, error) {
	ks := s.state(key)
	if ks == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	id := uuid.New()

	ks.mu.Lock()
	now := s.now()
	if ks.tryAdmit(now) {
		ks.mu.Unlock()
		s.record(ctx, Event{Key: key, RequestID: id, Admitted: true, At: now})
		return task()
	}

	pr := newPendingRequest(id, task, now)
	ks.enqueue(pr)
	depth := ks.queueLen()
	start := !ks.dispatching
	if start {
		ks.dispatching = true
	}
	ks.mu.Unlock()

	s.record(ctx, Event{Key: key, RequestID: id, QueueDepth: depth, At: now})
	if start {
		go s.drain(key, ks)
	}

	select {
	case out := <-pr.done:
		return out.value, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Scheduler) record(ctx context.Context, ev Event) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, ev); err != nil {
		log.Logger().Warn("failed to record scheduler event",
			zap.String("key", ev.Key), zap.Error(err))
	}
}
