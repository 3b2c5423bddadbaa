// Package memo implements the generic memo table: per-(ingredient,key)
// storage of a prior result plus the metadata needed to validate or
// evict it. Grounded on the teacher's internal/reactive/memo.go Memo[T]
// (cached value + staleness flag + version, under sync.RWMutex), generalized
// from "one cell" to "one row of a keyed table".
package memo

import (
	"github.com/rippledb/ripple/accumulate"
	"github.com/rippledb/ripple/kernel"
	"github.com/rippledb/ripple/revision"
)

// Meta is the revision bookkeeping half of a Memo, independent of the
// cached value's type so it can be inspected without the Table's type
// parameter.
type Meta struct {
	VerifiedAt revision.Revision
	ChangedAt  revision.Revision
	Durability revision.Durability
	Origin     kernel.Origin
	Accumulated *accumulate.Bag
	CycleHeads kernel.CycleHeads
}

// Provisional reports whether this memo is a cycle-in-progress value
// that must not be treated as final.
func (m Meta) Provisional() bool {
	return !m.CycleHeads.Empty()
}

// Computed reports whether this Meta represents any completed
// computation (as opposed to the zero value, meaning "never computed").
func (m Meta) Computed() bool {
	return m.VerifiedAt != revision.Zero
}

// Entry is one row of a Table[K,V]: a cached value plus its Meta.
type Entry[V any] struct {
	Value V
	Meta  Meta
}
