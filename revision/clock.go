package revision

import (
	"sync"

	"github.com/rippledb/ripple/internal/logger"
)

// Clock is the per-database revision clock and durability tracker.
// Grounded on the teacher's internal/reactive/batch.go exclusive-mutation
// discipline: a write ("bump") takes a lock, stamps state, and only then
// lets readers proceed, generalized here from "a batch of signal writes"
// to "one exclusive mutation epoch".
type Clock struct {
	mu          sync.RWMutex
	current     Revision
	lastChanged [numDurabilities]Revision
}

// NewClock returns a clock positioned at Start, with every durability
// level's last-changed stamp also at Start.
func NewClock() *Clock {
	c := &Clock{current: Start}
	for i := range c.lastChanged {
		c.lastChanged[i] = Start
	}
	return c
}

// Current returns the clock's current revision.
func (c *Clock) Current() Revision {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// LastChanged returns the last revision at which any input of the given
// durability (or coarser) changed.
func (c *Clock) LastChanged(d Durability) Revision {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastChanged[d]
}

// Bump increments the clock and stamps last_changed for every durability
// level at or below d (coarser-and-equal levels all observed the
// mutation). Must be called while holding exclusive access to the
// database, callers are responsible for ensuring no query execution is
// in flight's happens-before barrier.
func (c *Clock) Bump(d Durability) Revision {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current++
	for level := Low; level <= d; level++ {
		c.lastChanged[level] = c.current
	}

	logger.Debug(logger.TagRevision, "bumped to %s at durability %s", c.current, d)
	return c.current
}
