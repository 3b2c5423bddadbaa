package query

import (
	"github.com/rippledb/ripple"
	"github.com/rippledb/ripple/active"
	"github.com/rippledb/ripple/cycle"
	"github.com/rippledb/ripple/ident"
	"github.com/rippledb/ripple/ingredient"
	"github.com/rippledb/ripple/kernel"
	"github.com/rippledb/ripple/memo"
	"github.com/rippledb/ripple/revision"
)

// Specified is the ingredient backing "Specified values (specify)": a memo
// installed by an outer query for a tracked-struct key that same query just
// created via an Interned ingredient, rather than computed by a user
// function of its own. A Specified value has origin Assigned and inherits
// the specifying frame's dependency set, recorded on its Origin.
// MaybeChangedAfter compares only the memo's stored changed_at; it does
// not walk those edges.
type Specified[V any] struct {
	idx     ident.Index
	db      *ripple.Database
	table   *memo.Table[ident.Id, V]
	interns interned
}

// interned is the subset of *Interned[K]'s behavior Specify needs,
// kept key-type-erased so one Specified[V] can back fields of
// differently-keyed tracked structs.
type interned interface {
	CreatedWithinCurrentFrame(id ident.Id) bool
}

// NewSpecified registers a new Specified ingredient on db, backing a
// field of the tracked-struct kind produced by owner.
func NewSpecified[V any](db *ripple.Database, owner interned) *Specified[V] {
	s := &Specified[V]{db: db, table: memo.NewTable[ident.Id, V](), interns: owner}
	s.idx = db.Storage().Register(s)
	return s
}

// Specify installs value for key, which must name a tracked-struct
// created by the query currently executing on this goroutine, calling
// Specify from outside that query raises NotOurTrackedStruct. The installed
// memo's dependency edges and accumulated bag are inherited from the
// specifying frame, exactly as if value had been the return value of a
// Derived query running in that same frame.
func (s *Specified[V]) Specify(key ident.Id, value V) {
	if !s.interns.CreatedWithinCurrentFrame(key) {
		kernel.NotOurTrackedStruct(key)
	}

	frame := active.Current() // non-nil: CreatedWithinCurrentFrame already checked this
	current := s.db.Clock().Current()

	s.table.Install(key, &memo.Entry[V]{
		Value: value,
		Meta: memo.Meta{
			VerifiedAt:  current,
			ChangedAt:   current,
			Durability:  frame.MinDurability(),
			Origin:      kernel.Origin{Kind: kernel.Assigned, Edges: frame.Edges()},
			Accumulated: frame.Accumulated(),
		},
	}, current)
}

// MaybeChangedAfter reports whether key's assigned value changed after
// since.
func (s *Specified[V]) MaybeChangedAfter(key ident.Id, since revision.Revision) bool {
	entry, ok := s.table.Get(key)
	if !ok {
		return true
	}
	return entry.Meta.ChangedAt > since
}

// Fetch returns key's assigned value. Reading a key that was never
// specified, because the tracked struct that owned it was freed in a
// later revision before anyone called Specify for it this time around,
// is a ReadOfStaleTrackedStructField.
func (s *Specified[V]) Fetch(key ident.Id) ingredient.Fetched {
	entry, ok := s.table.Get(key)
	if !ok {
		kernel.ReadOfStaleTrackedStructField(key)
	}
	return ingredient.Fetched{
		Value:       entry.Value,
		Durability:  entry.Meta.Durability,
		ChangedAt:   entry.Meta.ChangedAt,
		Accumulated: entry.Meta.Accumulated,
		CycleHeads:  entry.Meta.CycleHeads,
	}
}

// Origin reports how key's current memo was produced.
func (s *Specified[V]) Origin(key ident.Id) (kernel.Origin, bool) {
	entry, ok := s.table.Get(key)
	if !ok {
		return kernel.Origin{}, false
	}
	return entry.Meta.Origin, true
}

// CycleRecoveryStrategy is always Panic: specify never re-executes.
func (s *Specified[V]) CycleRecoveryStrategy() cycle.Strategy { return cycle.Panic }

// ResetForNewRevision doesn't need to do anything about stale rows
// themselves, a specified value's lifetime is tied to its owning
// tracked struct's Interned entry, which handles its own revival GC,
// but Specify replaces table entries the same way Derived.install does,
// so it still drains the deferred-free list.
func (s *Specified[V]) ResetForNewRevision() {
	s.table.DrainFreeList(s.db.Clock().Current())
}

// SetCapacity is a no-op: Specified has nothing to evict.
func (s *Specified[V]) SetCapacity(int) {}
