package scheduler

import (
	"sync"
	"time"
)

// keyState groups everything the scheduler tracks for one platform key. All
// fields below mu form one critical section: the admission check and the
// timestamp record must never be separated by a suspension point.
type keyState struct {
	mu sync.Mutex

	limit  uint64
	window time.Duration

	// admitted holds the admission instants still inside the trailing
	// window, oldest first. Pruned lazily on each access.
	admitted []time.Time

	queue       []*pendingRequest
	dispatching bool
}

// prune drops admissions that have left the trailing window. An entry stays
// active while ts > now-window, so the slot taken at the window start frees
// exactly at oldest+window and a sleep landing on that instant never spins.
func (ks *keyState) prune(now time.Time) {
	cutoff := now.Add(-ks.window)
	i := 0
	for i < len(ks.admitted) && !ks.admitted[i].After(cutoff) {
		i++
	}
	if i > 0 {
		ks.admitted = append(ks.admitted[:0], ks.admitted[i:]...)
	}
}

func (ks *keyState) activeCount(now time.Time) uint64 {
	ks.prune(now)
	return uint64(len(ks.admitted))
}

// tryAdmit records now as an admission if the window has capacity. Callers
// hold ks.mu.
func (ks *keyState) tryAdmit(now time.Time) bool {
	if ks.activeCount(now) >= ks.limit {
		return false
	}
	ks.admitted = append(ks.admitted, now)
	return true
}

// nextFreeSlot reports the instant the oldest active admission exits the
// window. ok is false when nothing is active.
func (ks *keyState) nextFreeSlot() (time.Time, bool) {
	if len(ks.admitted) == 0 {
		return time.Time{}, false
	}
	return ks.admitted[0].Add(ks.window), true
}
