package cycle

import (
	"sync"

	"github.com/rippledb/ripple/kernel"
)

// Tracker is the process-wide bookkeeping of which cycle heads are
// currently mid-fixpoint, and which round they are on, consulted by
// package query so that every participant recomputed during a given
// pass agrees on the round number, without threading it through every
// intervening call frame. Grounded on the teacher's
// internal/workflow/workflow.go StageMetrics.RetryCount field: a plain
// per-unit-of-work round counter, generalized here from "retries of one
// failed stage" to "rounds of one converging cycle head".
type Tracker struct {
	mu     sync.Mutex
	active map[kernel.CycleHead]int
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{active: make(map[kernel.CycleHead]int)}
}

// Begin marks head as entering its first round, if it is not already
// active, and returns the round it is now on.
func (t *Tracker) Begin(head kernel.CycleHead) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n, ok := t.active[head]; ok {
		return n
	}
	t.active[head] = 1
	return 1
}

// Advance moves head to its next round and returns the new round
// number.
func (t *Tracker) Advance(head kernel.CycleHead) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active[head]++
	return t.active[head]
}

// Round reports the round head is currently on, or 0 if head is not
// active.
func (t *Tracker) Round(head kernel.CycleHead) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active[head]
}

// Active reports whether head is currently mid-fixpoint.
func (t *Tracker) Active(head kernel.CycleHead) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.active[head]
	return ok
}

// End marks head as finalized, removing its round bookkeeping.
func (t *Tracker) End(head kernel.CycleHead) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.active, head)
}
