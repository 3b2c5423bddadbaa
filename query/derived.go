package query

import (
	"github.com/rippledb/ripple"
	"github.com/rippledb/ripple/active"
	"github.com/rippledb/ripple/cycle"
	"github.com/rippledb/ripple/evict"
	"github.com/rippledb/ripple/event"
	"github.com/rippledb/ripple/ident"
	"github.com/rippledb/ripple/ingredient"
	"github.com/rippledb/ripple/internal/logger"
	"github.com/rippledb/ripple/kernel"
	"github.com/rippledb/ripple/memo"
	"github.com/rippledb/ripple/revision"
)

// Derived is a Derived/DerivedUntracked-origin ingredient: its values
// are computed by a user function of (*ripple.Shared, K), memoized, and
// re-validated according to the fetch/maybe_changed_after mutual
// recursion. This is the one ingredient kind that can participate in a
// cycle, per its configured cycle.Recovery.
type Derived[K comparable, V any] struct {
	idx   ident.Index
	db    *ripple.Database
	keys  *keyTable[K]
	table *memo.Table[ident.Id, V]

	fn       func(*ripple.Shared, K) V
	equal    func(a, b V) bool // nil => no_eq
	policy   evict.Policy
	recovery cycle.Recovery[K, V]

	provisional provisionalStore[V]
}

// DerivedOption configures a Derived at construction time.
type DerivedOption[K comparable, V any] func(*Derived[K, V])

// WithDerivedEquality enables backdating for this query's result.
func WithDerivedEquality[K comparable, V any](eq func(a, b V) bool) DerivedOption[K, V] {
	return func(d *Derived[K, V]) { d.equal = eq }
}

// WithEviction binds an eviction policy (e.g. evict.NewLRU(n)); the
// default, if omitted, is evict.Noop{} (unbounded).
func WithEviction[K comparable, V any](p evict.Policy) DerivedOption[K, V] {
	return func(d *Derived[K, V]) { d.policy = p }
}

// WithRecovery configures this query's cycle-recovery strategy. Omitting
// it leaves the implicit Panic strategy: any cycle through this query
// raises *kernel.CycleError.
func WithRecovery[K comparable, V any](r cycle.Recovery[K, V]) DerivedOption[K, V] {
	return func(d *Derived[K, V]) { d.recovery = r }
}

// NewDerived registers a new Derived ingredient on db, computing values
// with fn.
func NewDerived[K comparable, V any](db *ripple.Database, fn func(*ripple.Shared, K) V, opts ...DerivedOption[K, V]) *Derived[K, V] {
	d := &Derived[K, V]{
		db:          db,
		table:       memo.NewTable[ident.Id, V](),
		fn:          fn,
		policy:      evict.Noop{},
		provisional: newProvisionalStore[V](),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.idx = db.Storage().Register(d)
	d.keys = newKeyTable[K](d.idx)
	return d
}

// Id returns key's stable Id, interning it if this is the first time
// key has been seen.
func (d *Derived[K, V]) Id(key K) ident.Id {
	id, _ := d.keys.intern(key)
	return id
}

// SetCapacity forwards to this query's eviction policy.
func (d *Derived[K, V]) SetCapacity(n int) { d.policy.SetCapacity(n) }

// Origin reports how key's current memo was produced.
func (d *Derived[K, V]) Origin(id ident.Id) (kernel.Origin, bool) {
	entry, ok := d.table.Get(id)
	if !ok {
		return kernel.Origin{}, false
	}
	return entry.Meta.Origin, true
}

// CycleRecoveryStrategy reports this query's configured strategy.
func (d *Derived[K, V]) CycleRecoveryStrategy() cycle.Strategy { return d.recovery.Strategy }

// ResetForNewRevision flushes this query's pending eviction-policy
// drops, dropping their cached values but keeping their Meta resident,
// then drains the table's deferred-free list down to the revision this
// reset just made safe to reclaim.
func (d *Derived[K, V]) ResetForNewRevision() {
	d.policy.ForEachEvicted(func(id ident.Id) {
		d.table.DropValue(id)
	})
	d.table.DrainFreeList(d.db.Clock().Current())
}

func (d *Derived[K, V]) toFetched(entry *memo.Entry[V]) ingredient.Fetched {
	return ingredient.Fetched{
		Value:       entry.Value,
		Durability:  entry.Meta.Durability,
		ChangedAt:   entry.Meta.ChangedAt,
		Accumulated: entry.Meta.Accumulated,
		CycleHeads:  entry.Meta.CycleHeads,
	}
}

func (d *Derived[K, V]) equalOrAlwaysFalse() func(a, b V) bool {
	if d.equal != nil {
		return d.equal
	}
	return func(a, b V) bool { return false }
}

// MaybeChangedAfter implements maybe_changed_after: if there is no memo, or
// it predates since, it is brought current first (re-using the execute
// path); if shallowly valid, it cannot have changed; otherwise every
// dependency edge is walked, short-circuiting on the first true.
func (d *Derived[K, V]) MaybeChangedAfter(id ident.Id, since revision.Revision) bool {
	entry, ok := d.table.Get(id)
	if !ok || entry.Meta.VerifiedAt < since {
		fetched := d.Fetch(id)
		return fetched.ChangedAt > since
	}

	if entry.Meta.Origin.Kind != kernel.DerivedUntracked &&
		d.db.Clock().LastChanged(entry.Meta.Durability) <= since {
		return false
	}

	for _, e := range entry.Meta.Origin.Edges {
		if d.edgeMaybeChanged(e, since) {
			return true
		}
	}

	current := d.db.Clock().Current()
	d.table.Install(id, &memo.Entry[V]{Value: entry.Value, Meta: bumpVerified(entry.Meta, current)}, current)
	return entry.Meta.ChangedAt > since
}

// edgeMaybeChanged answers maybe_changed_after for one dependency edge,
// skipping the call into the dependency's own ingredient entirely when
// its durability alone already proves it cannot have changed since
// since. This is the same short-circuit Fetch's own shallow-validity check
// applies at the whole-memo level, applied per edge instead.
func (d *Derived[K, V]) edgeMaybeChanged(e kernel.DependencyEdge, since revision.Revision) bool {
	if d.db.Clock().LastChanged(e.Durability) <= since {
		return false
	}
	return d.db.Storage().MaybeChangedAfter(e.Key, since)
}

func bumpVerified(m memo.Meta, current revision.Revision) memo.Meta {
	m.VerifiedAt = current
	return m
}

// Fetch implements fetch driver end to end: fast path, shallow validity,
// deep validity, and, only if all three miss, execution, guarded by the
// cross-goroutine cycle registry.
func (d *Derived[K, V]) Fetch(id ident.Id) ingredient.Fetched {
	key, ok := d.keys.keyOf(id)
	if !ok {
		kernel.ReadOfStaleTrackedStructField(id)
	}
	current := d.db.Clock().Current()

	if entry, has := d.table.Get(id); has {
		if entry.Meta.VerifiedAt == current {
			return d.toFetched(entry)
		}

		shallow := entry.Meta.Origin.Kind != kernel.DerivedUntracked &&
			d.db.Clock().LastChanged(entry.Meta.Durability) <= entry.Meta.VerifiedAt

		if shallow || d.deepValid(entry) {
			refreshed := &memo.Entry[V]{Value: entry.Value, Meta: bumpVerified(entry.Meta, current)}
			d.table.Install(id, refreshed, current)
			d.policy.RecordUse(id)
			d.db.Emit(event.DidValidateMemoizedValue, d.idx, id)
			return d.toFetched(refreshed)
		}
	}

	return d.fetchOrExecute(id, key, current)
}

func (d *Derived[K, V]) deepValid(entry *memo.Entry[V]) bool {
	for _, e := range entry.Meta.Origin.Edges {
		if d.edgeMaybeChanged(e, entry.Meta.VerifiedAt) {
			return false
		}
	}
	return true
}

// fetchOrExecute is reached only when a fresh execution (or cycle
// recovery) is required. It claims (ingredient, id) in the database's
// cross-goroutine registry first, since that is the only point at which
// a recursive fetch of the same key, on this goroutine or another one
//, could occur.
func (d *Derived[K, V]) fetchOrExecute(id ident.Id, key K, current revision.Revision) ingredient.Fetched {
	self := active.GoroutineID()
	participant := kernel.Participant{Ingredient: d.idx, Key: id}

	participants, isCycle := d.db.Registry().Enter(self, participant)
	if isCycle {
		return d.recoverCycle(id, key, participants, current)
	}
	defer d.db.Registry().Exit(self, participant)

	return d.driveExecute(id, key, current)
}

// driveExecute is the non-reentrant execution path: the first Enter for
// (ingredient, id) in this round always lands here, whether or not this
// query turns out to be a cycle head (a head only reveals itself if a
// NESTED fetch of the same id happens during runOnce, which recurses
// back into fetchOrExecute and this time finds isCycle true).
func (d *Derived[K, V]) driveExecute(id ident.Id, key K, current revision.Revision) ingredient.Fetched {
	if d.recovery.Strategy != cycle.Fixpoint {
		value, frame := d.runOnce(id, key)
		entry := d.install(id, value, frame, current)
		d.policy.RecordUse(id)
		return d.toFetched(entry)
	}

	head := kernel.CycleHead{Ingredient: d.idx, Key: id}
	d.db.Tracker().Begin(head)
	defer d.db.Tracker().End(head)

	initial := d.recovery.Initial(key)
	d.provisional.set(id, initial)
	defer d.provisional.clear(id)

	var lastFrame *active.Frame
	final, _ := cycle.Drive(initial, func(provisional V) V {
		d.provisional.set(id, provisional)
		d.db.Tracker().Advance(head)
		value, frame := d.runOnce(id, key)
		lastFrame = frame
		return value
	}, d.recovery.Fn, d.equalOrAlwaysFalse())

	// The winning round's self-recursive read folded head onto lastFrame
	// via Shared.fetch's AddCycleHead, but convergence is exactly what
	// makes this memo final on itself, so it must not carry its own head
	// forward into the installed entry.
	lastFrame.RemoveCycleHead(head)

	entry := d.install(id, final, lastFrame, current)
	d.policy.RecordUse(id)
	return d.toFetched(entry)
}

// runOnce pushes a fresh active frame, invokes the user function once,
// and returns both its result and the frame the invocation populated.
func (d *Derived[K, V]) runOnce(id ident.Id, key K) (V, *active.Frame) {
	frame := active.NewFrame(kernel.Participant{Ingredient: d.idx, Key: id})
	active.Push(frame)
	defer active.Pop()

	d.db.Emit(event.WillExecute, d.idx, id)
	logger.Trace(logger.TagActive, "executing %d:%s", d.idx, id)
	value := d.fn(d.db.Shared(), key)
	return value, frame
}

// install folds a completed execution's frame into a new memo, applying
// backdating when the new value equals the old one under this query's
// configured equality.
func (d *Derived[K, V]) install(id ident.Id, value V, frame *active.Frame, current revision.Revision) *memo.Entry[V] {
	changedAt := frame.MaxChangedAt()
	if changedAt == revision.Zero {
		changedAt = current
	}

	if old, ok := d.table.Get(id); ok && d.equal != nil && d.equal(old.Value, value) {
		changedAt = old.Meta.ChangedAt
	}

	originKind := kernel.Derived
	if frame.Untracked() {
		originKind = kernel.DerivedUntracked
	}

	entry := &memo.Entry[V]{
		Value: value,
		Meta: memo.Meta{
			VerifiedAt:  current,
			ChangedAt:   changedAt,
			Durability:  frame.MinDurability(),
			Origin:      kernel.Origin{Kind: originKind, Edges: frame.Edges()},
			Accumulated: frame.Accumulated(),
			CycleHeads:  frame.CycleHeads(),
		},
	}
	d.table.Install(id, entry, current)
	return entry
}

// recoverCycle is reached when Registry.Enter reports that claiming
// (ingredient, id) would close a cycle: either this same goroutine is
// already running it (a reentrant fetch), or a chain of goroutines
// blocked on each other closes through it (see active.Registry.Enter).
// Recovery follows this query's configured strategy.
func (d *Derived[K, V]) recoverCycle(id ident.Id, key K, participants []kernel.Participant, current revision.Revision) ingredient.Fetched {
	switch d.recovery.Strategy {
	case cycle.Fixpoint:
		value, ok := d.provisional.get(id)
		if !ok {
			value = d.recovery.Initial(key)
		}
		head := kernel.CycleHead{Ingredient: d.idx, Key: id}
		return ingredient.Fetched{
			Value:      value,
			Durability: revision.Low,
			ChangedAt:  current,
			CycleHeads: kernel.CycleHeads{head: {}},
		}

	case cycle.FallbackImmediate:
		value := d.recovery.Result(key)
		head := kernel.CycleHead{Ingredient: d.idx, Key: id}
		entry := &memo.Entry[V]{
			Value: value,
			Meta: memo.Meta{
				VerifiedAt: current,
				ChangedAt:  current,
				Durability: revision.Low,
				Origin:     kernel.Origin{Kind: kernel.Assigned},
				CycleHeads: kernel.CycleHeads{head: {}},
			},
		}
		d.table.Install(id, entry, current)
		return d.toFetched(entry)

	default: // cycle.Panic
		canon := kernel.CanonicalParticipant(participants)
		logger.Debug(logger.TagCycle, "cycle detected among %v (canonical reporter %s)", participants, canon)
		kernel.ThrowCycle(participants)
		panic("unreachable")
	}
}
