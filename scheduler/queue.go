package scheduler

import (
	"time"

	"github.com/google/uuid"
)

type outcome struct {
	value interface{}
	err   error
}

// pendingRequest is a queued task plus the channel its caller waits on. The
// queue owns it until dequeue; after that the drain loop delivers exactly
// one resolution. The buffer keeps a resolution from blocking when the
// caller has already given up.
type pendingRequest struct {
	id         uuid.UUID
	task       Task
	enqueuedAt time.Time
	done       chan outcome
}

func newPendingRequest(id uuid.UUID, task Task, now time.Time) *pendingRequest {
	return &pendingRequest{
		id:         id,
		task:       task,
		enqueuedAt: now,
		done:       make(chan outcome, 1),
	}
}

func (pr *pendingRequest) resolve(value interface{}, err error) {
	pr.done <- outcome{value: value, err: err}
}

// enqueue and dequeue keep strict FIFO order. Callers hold ks.mu.

func (ks *keyState) enqueue(pr *pendingRequest) {
	ks.queue = append(ks.queue, pr)
}

func (ks *keyState) dequeue() *pendingRequest {
	if len(ks.queue) == 0 {
		return nil
	}
	pr := ks.queue[0]
	ks.queue[0] = nil
	ks.queue = ks.queue[1:]
	return pr
}

func (ks *keyState) queueLen() int {
	return len(ks.queue)
}
