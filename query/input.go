package query

import (
	"sync"

	"github.com/rippledb/ripple"
	"github.com/rippledb/ripple/cycle"
	"github.com/rippledb/ripple/ident"
	"github.com/rippledb/ripple/ingredient"
	"github.com/rippledb/ripple/kernel"
	"github.com/rippledb/ripple/memo"
	"github.com/rippledb/ripple/revision"
)

// Input is a BaseInput-origin ingredient: its values are set directly
// by Exclusive callers rather than computed, so it has no dependency
// edges and no cycle-recovery strategy of its own.
type Input[K comparable, V any] struct {
	idx   ident.Index
	db    *ripple.Database
	keys  *keyTable[K]
	table *memo.Table[ident.Id, V]
	equal func(a, b V) bool // nil => no_eq: backdating never applies

	mu         sync.Mutex
	singleton  bool
	hasCreated bool
}

// InputOption configures an Input at construction time.
type InputOption[K comparable, V any] func(*Input[K, V])

// WithEquality enables backdating: Set skips advancing changed_at when
// the new value equals the old one under eq. Omitting this option
// disables backdating entirely.
func WithEquality[K comparable, V any](eq func(a, b V) bool) InputOption[K, V] {
	return func(in *Input[K, V]) { in.equal = eq }
}

// Singleton marks this Input so that Create panics with
// kernel.SingletonDuplicated if called a second time without an
// intervening Remove.
func Singleton[K comparable, V any]() InputOption[K, V] {
	return func(in *Input[K, V]) { in.singleton = true }
}

// NewInput registers a new Input ingredient on db and returns it.
func NewInput[K comparable, V any](db *ripple.Database, opts ...InputOption[K, V]) *Input[K, V] {
	in := &Input[K, V]{db: db, table: memo.NewTable[ident.Id, V]()}
	for _, opt := range opts {
		opt(in)
	}
	in.idx = db.Storage().Register(in)
	in.keys = newKeyTable[K](in.idx)
	return in
}

// Id returns key's stable Id, interning it if this is the first time
// key has been seen (or the first time since it was last removed).
func (in *Input[K, V]) Id(key K) ident.Id {
	id, _ := in.keys.intern(key)
	return id
}

// Create sets key's initial value like Set, but additionally enforces
// singleton semantics: if this Input was built with Singleton() and
// already has a live value (and key was never removed), Create panics
// with kernel.SingletonDuplicated instead of silently overwriting it.
func (in *Input[K, V]) Create(ex *ripple.Exclusive, key K, value V, durability revision.Durability) {
	if in.singleton {
		in.mu.Lock()
		if in.hasCreated {
			in.mu.Unlock()
			kernel.SingletonDuplicated(in.idx)
		}
		in.hasCreated = true
		in.mu.Unlock()
	}
	in.Set(ex, key, value, durability)
}

// Set installs value for key at the given durability, bumping the
// database's revision clock first, every individual Set is its own
// revision. If an equality function was configured and the new value equals
// the prior one, changed_at is backdated to the prior memo's changed_at
// rather than advanced, so downstream derived memos do not spuriously
// re-execute.
func (in *Input[K, V]) Set(ex *ripple.Exclusive, key K, value V, durability revision.Durability) {
	current := ex.Bump(durability)
	id, _ := in.keys.intern(key)

	changedAt := current
	if old, ok := in.table.Get(id); ok && in.equal != nil && in.equal(old.Value, value) {
		changedAt = old.Meta.ChangedAt
	}

	in.table.Install(id, &memo.Entry[V]{
		Value: value,
		Meta: memo.Meta{
			VerifiedAt: current,
			ChangedAt:  changedAt,
			Durability: durability,
			Origin:     kernel.Origin{Kind: kernel.BaseInput},
		},
	}, current)
}

// Remove drops key's value entirely, bumping the clock at durability
// Low (the coarsest-change assumption for an operation with no
// durability of its own to report) and forgetting its interned Id, so a
// later Create/Set for the same key gets a brand-new Id.
func (in *Input[K, V]) Remove(ex *ripple.Exclusive, key K) {
	ex.Bump(revision.Low)
	id, existed := in.keys.forget(key)
	if !existed {
		return
	}
	in.table.Delete(id)
	if in.singleton {
		in.mu.Lock()
		in.hasCreated = false
		in.mu.Unlock()
	}
}

// MaybeChangedAfter reports whether key's value changed after since.
func (in *Input[K, V]) MaybeChangedAfter(key ident.Id, since revision.Revision) bool {
	entry, ok := in.table.Get(key)
	if !ok {
		return true
	}
	return entry.Meta.ChangedAt > since
}

// Fetch returns key's current value and metadata.
func (in *Input[K, V]) Fetch(key ident.Id) ingredient.Fetched {
	entry, ok := in.table.Get(key)
	if !ok {
		var zero V
		return ingredient.Fetched{Value: zero}
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
func (in *Input[K, V]) Origin(key ident.Id) (kernel.Origin, bool) {
	entry, ok := in.table.Get(key)
	if !ok {
		return kernel.Origin{}, false
	}
	return entry.Meta.Origin, true
}

// CycleRecoveryStrategy is always Panic: an Input never executes user
// code, so it can never participate in a cycle as the head.
func (in *Input[K, V]) CycleRecoveryStrategy() cycle.Strategy { return cycle.Panic }

// ResetForNewRevision has no eviction policy to flush, but Set replaces
// entries just like Derived does, so it still drains its table's
// deferred-free list down to the revision this reset just made safe.
func (in *Input[K, V]) ResetForNewRevision() {
	in.table.DrainFreeList(in.db.Clock().Current())
}

// SetCapacity is a no-op: Input has nothing to evict.
func (in *Input[K, V]) SetCapacity(int) {}
