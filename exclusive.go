package ripple

import (
	"github.com/rippledb/ripple/ident"
	"github.com/rippledb/ripple/internal/logger"
	"github.com/rippledb/ripple/revision"
)

// Exclusive is the write-access handle to a Database: bumping the
// revision clock and resetting ingredients for a new revision both
// require exclusive access, since no query execution may straddle a
// bump. Input takes an *Exclusive as evidence its Set and Remove
// methods are being called with that access already held; Interned
// takes none.
type Exclusive struct {
	db *Database
}

// Database returns the handle's owning Database.
func (e *Exclusive) Database() *Database { return e.db }

// CancellationToken returns the token external callers use to cancel
// every query in flight.
func (e *Exclusive) CancellationToken() *CancellationToken { return e.db.cancel }

// Bump advances the revision clock, stamping last_changed for every
// durability at or below d, and gives every registered ingredient a
// chance to reset (flush pending frees, nudge eviction policies) before
// the next revision's queries run. query.Input.Set and Remove call this
// on the caller's behalf before installing their own value, so every
// individual input write is itself a new revision; Bump is also exposed
// directly for a "synthetic" write with no specific input change. Bump
// takes the Database's write lock for its entire body, which is what
// actually enforces the happens-before barrier: any Shared.Fetch already
// in flight holds the read lock and must finish (or never have started)
// before Bump can proceed, and no new Shared.Fetch can start until Bump
// releases it.
func (e *Exclusive) Bump(d revision.Durability) revision.Revision {
	e.db.mu.Lock()
	defer e.db.mu.Unlock()

	next := e.db.clock.Bump(d)
	e.db.storage.ResetForNewRevision()
	return next
}

// SetLRUCapacity adjusts the eviction policy capacity of the ingredient
// registered at idx. Ingredients with no eviction policy (Input,
// Interned) ignore the call.
func (e *Exclusive) SetLRUCapacity(idx ident.Index, n int) {
	ing, ok := e.db.storage.Get(idx)
	if !ok {
		logger.Warn(logger.TagDatabase, "SetLRUCapacity: no ingredient registered at index %d", idx)
		return
	}
	ing.SetCapacity(n)
}
