// Package query ships the four concrete ingredient kinds this engine
// needs beyond the polymorphic core: Input (BaseInput origin), Derived
// (the full fetch/maybe_changed_after driver), Interned (stable
// dense ids for equal keys within a revision), and Specified (values
// assigned by specify). It is the Go-idiomatic
// analogue of salsa's own non-macro-generated src/input and src/function
// modules.
package query

import (
	"sync"

	"github.com/rippledb/ripple/ident"
)

// keyTable assigns a stable, monotonically increasing ident.Id to each
// distinct K a query ingredient sees, and tracks the reverse mapping so
// an ingredient's Fetch/MaybeChangedAfter, which only ever receive an
// ident.Id from package ingredient.Storage, can recover the original
// key to pass to a user function. Grounded on the teacher's
// internal/graph/graph.go registration-map pattern, the same shape
// ingredient.Storage itself reuses for ingredient registration.
//
// A key, once interned, keeps the same Id for the table's lifetime
// UNLESS explicitly forgotten (Input.Remove, Interned's revival GC):
// forgetting and re-interning the same K always produces a brand-new Id
// (next is never reused), so a revived tracked struct always
// receives a fresh id rather than silently inheriting a forgotten one's.
type keyTable[K comparable] struct {
	mu    sync.Mutex
	ids   map[K]ident.Id
	keys  map[ident.Id]K
	owner ident.Index
	next  uint32
}

func newKeyTable[K comparable](owner ident.Index) *keyTable[K] {
	return &keyTable[K]{
		ids:   make(map[K]ident.Id),
		keys:  make(map[ident.Id]K),
		owner: owner,
	}
}

// intern returns key's Id, assigning a new one if key has never been
// seen (or was forgotten since). isNew reports which happened.
func (t *keyTable[K]) intern(key K) (id ident.Id, isNew bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.ids[key]; ok {
		return id, false
	}
	t.next++
	id = ident.Id{Ingredient: t.owner, Local: t.next}
	t.ids[key] = id
	t.keys[id] = key
	return id, true
}

// lookup returns key's Id without creating one.
func (t *keyTable[K]) lookup(key K) (ident.Id, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.ids[key]
	return id, ok
}

// keyOf recovers the original K for an Id this table assigned.
func (t *keyTable[K]) keyOf(id ident.Id) (K, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	k, ok := t.keys[id]
	return k, ok
}

// forget drops key's mapping entirely; a later intern of the same key
// gets a fresh Id.
func (t *keyTable[K]) forget(key K) (id ident.Id, existed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, existed = t.ids[key]
	if existed {
		delete(t.ids, key)
		delete(t.keys, id)
	}
	return id, existed
}

// forgetID drops id's mapping by Id rather than by key, for the
// revival-GC sweep which only has ids to work from.
func (t *keyTable[K]) forgetID(id ident.Id) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if k, ok := t.keys[id]; ok {
		delete(t.ids, k)
		delete(t.keys, id)
	}
}

// allIDs returns every currently-interned Id, for the revival-GC sweep.
func (t *keyTable[K]) allIDs() []ident.Id {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]ident.Id, 0, len(t.keys))
	for id := range t.keys {
		out = append(out, id)
	}
	return out
}
