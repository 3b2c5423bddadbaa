// Package ingredient defines the polymorphic contract every storage
// module (input, derived-function, interned) implements, and the
// Storage container that assigns each one a stable index and routes
// calls to it by (ingredient, key).
package ingredient

import (
	"github.com/rippledb/ripple/accumulate"
	"github.com/rippledb/ripple/cycle"
	"github.com/rippledb/ripple/ident"
	"github.com/rippledb/ripple/kernel"
	"github.com/rippledb/ripple/revision"
)

// Fetched is what Fetch returns: the value itself plus the metadata a
// caller needs to record a dependency edge on its own active frame
// (durability and changed_at, minus the (ingredient,key) half the caller
// already knows since it's the thing it just fetched), the memo's
// transitively-merged accumulator bag, and the cycle heads a provisional
// read depends on, both of which the caller's frame must also fold in,
// exactly as the edge is.
type Fetched struct {
	Value       any
	Durability  revision.Durability
	ChangedAt   revision.Revision
	Accumulated *accumulate.Bag
	CycleHeads  kernel.CycleHeads
}

// Ingredient is the contract every registered storage module satisfies,
// translated from original_source/components/salsa-2022/src/ingredient.rs's
// Ingredient/MutIngredient trait pair into a single Go interface (Go has
// no optional-trait equivalent; ResetForNewRevision is simply a no-op
// for ingredients that don't need it).
type Ingredient interface {
	// MaybeChangedAfter reports whether key's observable value changed
	// after revision since, validating dependencies as needed.
	MaybeChangedAfter(key ident.Id, since revision.Revision) bool

	// Fetch returns key's current value and metadata, executing or
	// re-validating as necessary. It does NOT itself record a dependency
	// edge on any caller's frame; that is the dispatching caller's job,
	// once it has the durability/changed_at Fetch reports, since
	// Ingredient has no notion of "the caller's frame" (only
	// package ripple's Shared does). Panics with *kernel.CycleError or
	// *kernel.CancelledError rather than returning an error: there is no
	// local recovery point below the nearest cycle/cancellation boundary.
	Fetch(key ident.Id) Fetched

	// Origin reports how key's current memo was produced, or false if
	// key has never been computed.
	Origin(key ident.Id) (kernel.Origin, bool)

	// CycleRecoveryStrategy is this ingredient's static recovery mode,
	// chosen at registration and never changed afterward.
	CycleRecoveryStrategy() cycle.Strategy

	// ResetForNewRevision gives an ingredient a chance to flush pending
	// deletions and nudge its eviction policy before the next revision's
	// queries start running. Ingredients with nothing to do may leave
	// this empty.
	ResetForNewRevision()

	// SetCapacity adjusts this ingredient's eviction policy capacity, if
	// it has one. A non-negative n with no meaning for this ingredient (Input,
	// Interned: nothing to evict) is simply ignored.
	SetCapacity(n int)
}
