package query

import (
	"sync"

	"github.com/rippledb/ripple/ident"
)

// provisionalStore holds the in-progress value of a Fixpoint query's
// current round, keyed by id, so a nested reentrant Fetch of the same
// (ingredient, id), which cannot go through the memo table, since
// installing there would make an unfinished iteration visible to a
// concurrent reader on another goroutine, can still observe the
// latest round's value. Entries live only for the duration of one
// driveExecute call.
type provisionalStore[V any] struct {
	mu     sync.Mutex
	values map[ident.Id]V
}

func newProvisionalStore[V any]() provisionalStore[V] {
	return provisionalStore[V]{values: make(map[ident.Id]V)}
}

func (p *provisionalStore[V]) set(id ident.Id, value V) {
	p.mu.Lock()
	p.values[id] = value
	p.mu.Unlock()
}

func (p *provisionalStore[V]) get(id ident.Id) (V, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.values[id]
	return v, ok
}

func (p *provisionalStore[V]) clear(id ident.Id) {
	p.mu.Lock()
	delete(p.values, id)
	p.mu.Unlock()
}
