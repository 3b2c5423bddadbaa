package evict

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rippledb/ripple/ident"
)

// LRU is a capacity-bounded eviction policy backed by
// github.com/hashicorp/golang-lru/v2. It tracks recency of ident.Id use
// only; the ingredient's own memo table remains the source of truth for
// values, so an evicted id simply has ForEachEvicted invoked for it the
// next time the database resets for a new revision.
type LRU struct {
	mu      sync.Mutex
	cache   *lru.Cache[ident.Id, struct{}]
	pending []ident.Id
}

// NewLRU returns an LRU policy with the given initial capacity. A
// capacity <= 0 is treated as 1 (golang-lru requires a positive size);
// callers wanting unbounded behavior should use Noop instead.
func NewLRU(capacity int) *LRU {
	if capacity <= 0 {
		capacity = 1
	}
	l := &LRU{}
	cache, err := lru.NewWithEvict[ident.Id, struct{}](capacity, func(id ident.Id, _ struct{}) {
		l.mu.Lock()
		l.pending = append(l.pending, id)
		l.mu.Unlock()
	})
	if err != nil {
		// Only returns an error for capacity <= 0, already guarded above.
		panic(err)
	}
	l.cache = cache
	return l
}

func (l *LRU) RecordUse(id ident.Id) {
	l.cache.Add(id, struct{}{})
}

func (l *LRU) SetCapacity(capacity int) {
	if capacity <= 0 {
		capacity = 1
	}
	l.cache.Resize(capacity)
}

func (l *LRU) ForEachEvicted(cb func(ident.Id)) {
	l.mu.Lock()
	pending := l.pending
	l.pending = nil
	l.mu.Unlock()

	for _, id := range pending {
		cb(id)
	}
}

var _ Policy = (*LRU)(nil)
