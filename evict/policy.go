// Package evict defines the pluggable eviction-policy contract every
// Derived ingredient consults, and ships two implementations: Noop (the
// default, unbounded) and LRU (capacity-bounded, backed by
// github.com/hashicorp/golang-lru/v2). Ported in shape from
// original_source/src/function/eviction.rs's EvictionPolicy trait.
package evict

import "github.com/rippledb/ripple/ident"

// Policy controls when memoized values are evicted from an ingredient's
// memo table. Evicting drops a memo's cached value but never its
// changed_at/durability stamps, so downstream validation can still
// consult metadata cheaply.
type Policy interface {
	// RecordUse notes that id's value was just read or (re)computed.
	RecordUse(id ident.Id)

	// SetCapacity changes the maximum number of resident values. Noop
	// ignores it and stays unbounded; LRU treats a capacity <= 0 as 1.
	SetCapacity(capacity int)

	// ForEachEvicted invokes cb once for every id that should have its
	// cached value dropped. Called once per revision, from
	// reset_for_new_revision.
	ForEachEvicted(cb func(ident.Id))
}
