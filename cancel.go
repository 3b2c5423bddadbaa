package ripple

import (
	"sync/atomic"

	"github.com/rippledb/ripple/kernel"
)

// CancellationToken is the handle "Cancellation" describes: an external
// caller calls Cancel, and every in-flight query observes it at its next
// engine re-entry point (Shared.Fetch or Shared.MaybeChangedAfter), raising a *kernel.CancelledError
// unwind. Grounded on the teacher's internal/reactive/batch.go atomic.Bool
// "batching in progress" flag, the same single-word, lock-free signal
// shape, repurposed from coordinating a batch to requesting an abort.
type CancellationToken struct {
	cancelled atomic.Bool
	reason    atomic.Value // string
}

// NewCancellationToken returns a token in the not-cancelled state.
func NewCancellationToken() *CancellationToken {
	return &CancellationToken{}
}

// Cancel marks the token cancelled. Safe to call more than once; only
// the first call's reason is kept.
func (c *CancellationToken) Cancel(reason string) {
	if c.cancelled.CompareAndSwap(false, true) {
		c.reason.Store(reason)
	}
}

// Cancelled reports whether Cancel has been called.
func (c *CancellationToken) Cancelled() bool {
	return c.cancelled.Load()
}

// Check panics with a *kernel.CancelledError if the token has been
// cancelled. Shared calls it at the start of every Fetch and
// MaybeChangedAfter; a goroutine suspended in Registry.Enter does not
// check it while it waits.
func (c *CancellationToken) Check() {
	if !c.cancelled.Load() {
		return
	}
	reason, _ := c.reason.Load().(string)
	kernel.ThrowCancelled(reason)
}
