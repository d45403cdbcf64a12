package scheduler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/osintkit/platform-scheduler/log"
)

// drain serves one key's queue in FIFO order until it is empty. At most one
// drain goroutine runs per key at any time: the dispatching flag is set by
// the Schedule call that starts the loop and cleared here, both under ks.mu.
func (s *Scheduler) drain(key string, ks *keyState) {
	log.Logger().Debug("drain loop started", zap.String("key", key))

	for {
		ks.mu.Lock()
		if ks.queueLen() == 0 {
			ks.dispatching = false
			ks.mu.Unlock()
			log.Logger().Debug("drain loop finished", zap.String("key", key))
			return
		}

		now := s.now()
		if ks.tryAdmit(now) {
			pr := ks.dequeue()
			depth := ks.queueLen()
			ks.mu.Unlock()

			log.Logger().Debug("dispatching queued request",
				zap.String("key", key),
				zap.String("request_id", pr.id.String()),
				zap.Duration("queued_for", now.Sub(pr.enqueuedAt)))
			s.record(context.Background(), Event{
				Key:        key,
				RequestID:  pr.id,
				Admitted:   true,
				QueueDepth: depth,
				At:         now,
			})
			// a task failure resolves only this caller; the loop keeps
			// serving the rest of the queue
			pr.resolve(pr.task())
			continue
		}

		next, ok := ks.nextFreeSlot()
		if !ok {
			// over capacity with no admission left to expire: the window can
			// never open. Initialize validates against this; fail the queue
			// once instead of spinning.
			pending := ks.queue
			ks.queue = nil
			ks.dispatching = false
			ks.mu.Unlock()

			err := fmt.Errorf("%w: key %q is saturated with no admissions to expire",
				ErrInvalidWindow, key)
			log.Logger().Error("abandoning drain loop", zap.String("key", key), zap.Error(err))
			for _, pr := range pending {
				pr.resolve(nil, err)
			}
			return
		}
		wait := next.Sub(now)
		ks.mu.Unlock()

		if wait < 0 {
			wait = 0
		}
		// one precise sleep per pass, recomputed fresh each time; no polling
		<-s.after(wait)
	}
}
