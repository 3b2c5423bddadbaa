package memo

import (
	"sync"

	"github.com/rippledb/ripple/revision"
)

const shardCount = 16

// Table is a generic, sharded concurrent map from key to Entry[V]. Reads
// take only their shard's read lock, matching "reads lock-free on the hot
// path" in spirit (lock-free at the table-wide level; each shard's own
// RWMutex is still uncontended in the common case of distinct keys landing
// in distinct shards).
type Table[K comparable, V any] struct {
	shards [shardCount]shard[K, V]

	freeMu sync.Mutex
	free   []deferredFree
}

type shard[K comparable, V any] struct {
	mu   sync.RWMutex
	rows map[K]*Entry[V]
}

type deferredFree struct {
	replacedInRevision revision.Revision
	run                func()
}

// NewTable returns an empty table.
func NewTable[K comparable, V any]() *Table[K, V] {
	t := &Table[K, V]{}
	for i := range t.shards {
		t.shards[i].rows = make(map[K]*Entry[V])
	}
	return t
}

func shardFor[K comparable, V any](t *Table[K, V], key K) *shard[K, V] {
	h := hashAny(key)
	return &t.shards[h%shardCount]
}

// Get returns the entry for key, if any.
func (t *Table[K, V]) Get(key K) (*Entry[V], bool) {
	s := shardFor(t, key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.rows[key]
	return e, ok
}

// Install atomically replaces the entry for key with entry. If an entry
// already existed, it is moved to the deferred-free list keyed by the
// revision at which it was replaced, rather than freed immediately, a
// reader that started before the replacement may still be walking the
// old entry's dependency edges.
func (t *Table[K, V]) Install(key K, entry *Entry[V], asOf revision.Revision) {
	s := shardFor(t, key)
	s.mu.Lock()
	old, existed := s.rows[key]
	s.rows[key] = entry
	s.mu.Unlock()

	if existed {
		t.freeMu.Lock()
		t.free = append(t.free, deferredFree{
			replacedInRevision: asOf,
			run:                func() { release(old) },
		})
		t.freeMu.Unlock()
	}
}

// release drops a replaced entry's own references to its cached value
// and the heavier parts of its metadata. The free-list slice that holds
// its deferredFree keeps growing until the next drain, so without this
// the entry (and everything it points to: edges, the accumulator bag,
// cycle heads) stays reachable for the whole wait rather than just
// until the reader that might still be using it is done.
func release[V any](e *Entry[V]) {
	var zero V
	e.Value = zero
	e.Meta.Origin.Edges = nil
	e.Meta.Accumulated = nil
	e.Meta.CycleHeads = nil
}

// Delete removes key's entry entirely (used by Input.Remove).
func (t *Table[K, V]) Delete(key K) {
	s := shardFor(t, key)
	s.mu.Lock()
	delete(s.rows, key)
	s.mu.Unlock()
}

// DropValue clears just the cached Value for key, keeping its Meta
// resident, this is what eviction does.
func (t *Table[K, V]) DropValue(key K) {
	s := shardFor(t, key)
	s.mu.Lock()
	if e, ok := s.rows[key]; ok {
		var zero V
		e.Value = zero
	}
	s.mu.Unlock()
}

// DrainFreeList discards every deferred-free entry installed strictly
// before safeRevision, i.e. every entry replaced in a revision that no
// reader can still be observing. Each ingredient calls this from its own
// ResetForNewRevision, which Exclusive.Bump runs while still holding the
// database's write lock, so by the time this runs no Shared read can be
// in flight to hold a reference into a now-stale entry.
func (t *Table[K, V]) DrainFreeList(safeRevision revision.Revision) {
	t.freeMu.Lock()
	defer t.freeMu.Unlock()

	kept := t.free[:0]
	for _, f := range t.free {
		if f.replacedInRevision < safeRevision {
			f.run()
		} else {
			kept = append(kept, f)
		}
	}
	t.free = kept
}

// Len returns the number of resident entries, for tests.
func (t *Table[K, V]) Len() int {
	n := 0
	for i := range t.shards {
		t.shards[i].mu.RLock()
		n += len(t.shards[i].rows)
		t.shards[i].mu.RUnlock()
	}
	return n
}
