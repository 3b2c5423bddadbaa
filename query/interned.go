package query

import (
	"sync"

	"github.com/rippledb/ripple"
	"github.com/rippledb/ripple/active"
	"github.com/rippledb/ripple/cycle"
	"github.com/rippledb/ripple/ident"
	"github.com/rippledb/ripple/ingredient"
	"github.com/rippledb/ripple/kernel"
	"github.com/rippledb/ripple/revision"
)

// Interned assigns a stable dense Id to each distinct K seen within a
// Database's lifetime, and never changes an id's changed_at once
// assigned. Unlike Input, keys are created implicitly by Intern rather
// than explicitly by an Exclusive caller: interning itself records no
// dependency edge and never mutates the clock. Revival semantics: a key
// that goes untouched for one entire revision is purged from the table
// on the next ResetForNewRevision, so a later Intern of an equal K is
// treated as a brand-new identity (keyTable.intern never reuses a
// forgotten key's Id) rather than silently reviving stale edges recorded
// against the old one.
type Interned[K comparable] struct {
	db  *ripple.Database
	idx ident.Index

	keys *keyTable[K]

	mu           sync.Mutex
	touchedAt    map[ident.Id]revision.Revision
	internedAt   map[ident.Id]revision.Revision
	createdBy    map[ident.Id]kernel.Participant
	lastResetRev revision.Revision
}

// NewInterned registers a new Interned ingredient on db.
func NewInterned[K comparable](db *ripple.Database) *Interned[K] {
	in := &Interned[K]{
		db:           db,
		touchedAt:    make(map[ident.Id]revision.Revision),
		internedAt:   make(map[ident.Id]revision.Revision),
		createdBy:    make(map[ident.Id]kernel.Participant),
		lastResetRev: db.Clock().Current(),
	}
	in.idx = db.Storage().Register(in)
	in.keys = newKeyTable[K](in.idx)
	return in
}

// Intern returns key's stable Id, assigning a fresh one (never reusing a
// prior identity, even if key was interned and then purged in an
// earlier revision) if needed. Touches key's last-seen revision so it
// survives the next revival sweep. If called from within an active
// query, records the calling frame's owner as the creator, for Specify's
// NotOurTrackedStruct check.
func (in *Interned[K]) Intern(key K) ident.Id {
	id, isNew := in.keys.intern(key)

	in.mu.Lock()
	in.touchedAt[id] = in.db.Clock().Current()
	if isNew {
		in.internedAt[id] = in.touchedAt[id]
		if frame := active.Current(); frame != nil {
			in.createdBy[id] = frame.Owner
		}
	}
	in.mu.Unlock()
	return id
}

// CreatedWithinCurrentFrame reports whether id was interned by the
// query currently executing on this goroutine, the check Specify uses
// to raise NotOurTrackedStruct.
func (in *Interned[K]) CreatedWithinCurrentFrame(id ident.Id) bool {
	frame := active.Current()
	if frame == nil {
		return false
	}
	in.mu.Lock()
	owner, ok := in.createdBy[id]
	in.mu.Unlock()
	return ok && owner == frame.Owner
}

// KeyOf recovers the original key for an Id this ingredient assigned.
func (in *Interned[K]) KeyOf(id ident.Id) (K, bool) {
	return in.keys.keyOf(id)
}

// MaybeChangedAfter always reports false: an interned id's identity
// never changes once assigned (it either exists with its original
// changed_at, which by construction is never after `since` once the
// caller already holds a reference, or it has been purged, which is a
// ReadOfStaleTrackedStructField situation the tracked-struct-field layer
// is responsible for catching, not this ingredient).
func (in *Interned[K]) MaybeChangedAfter(ident.Id, revision.Revision) bool {
	return false
}

// Fetch returns the revision at which id was first interned as its
// changed_at; interning ingredients have no executed "value" of their
// own beyond the key's identity, so Value is the key itself.
func (in *Interned[K]) Fetch(id ident.Id) ingredient.Fetched {
	key, ok := in.keys.keyOf(id)
	if !ok {
		kernel.ReadOfStaleTrackedStructField(id)
	}
	in.mu.Lock()
	internedAt := in.internedAt[id]
	in.mu.Unlock()
	return ingredient.Fetched{Value: key, Durability: revision.High, ChangedAt: internedAt}
}

// Origin reports BaseInput for any live interned id, since identity
// assignment has no tracked dependency edges of its own.
func (in *Interned[K]) Origin(id ident.Id) (kernel.Origin, bool) {
	if _, ok := in.keys.keyOf(id); !ok {
		return kernel.Origin{}, false
	}
	return kernel.Origin{Kind: kernel.BaseInput}, true
}

// CycleRecoveryStrategy is always Panic: interning never executes user
// code.
func (in *Interned[K]) CycleRecoveryStrategy() cycle.Strategy { return cycle.Panic }

// ResetForNewRevision purges every id that was not touched since the
// previous reset, i.e. whose owning key was not interned again during
// the revision that just ended: an id untouched for one whole revision
// is gone, and a later Intern of an equal key gets a fresh identity.
func (in *Interned[K]) ResetForNewRevision() {
	current := in.db.Clock().Current()

	in.mu.Lock()
	defer in.mu.Unlock()

	for _, id := range in.keys.allIDs() {
		if in.touchedAt[id] < in.lastResetRev {
			delete(in.touchedAt, id)
			delete(in.internedAt, id)
			delete(in.createdBy, id)
			in.keys.forgetID(id)
		}
	}
	in.lastResetRev = current
}

// SetCapacity is a no-op: Interned has nothing to evict (its identities
// are purged by revival GC, not by an eviction policy).
func (in *Interned[K]) SetCapacity(int) {}
