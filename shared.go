package ripple

import (
	"github.com/rippledb/ripple/accumulate"
	"github.com/rippledb/ripple/active"
	"github.com/rippledb/ripple/event"
	"github.com/rippledb/ripple/ident"
	"github.com/rippledb/ripple/ingredient"
	"github.com/rippledb/ripple/kernel"
	"github.com/rippledb/ripple/revision"
)

func edgeOf(id ident.Id, f ingredient.Fetched) kernel.DependencyEdge {
	return kernel.DependencyEdge{
		Ingredient:    id.Ingredient,
		Key:           id,
		Durability:    f.Durability,
		LastChangedAt: f.ChangedAt,
	}
}

// Shared is a read-access handle to a Database: any number of Shared
// handles may be used concurrently, from any number of goroutines, and
// every query's user function receives one. It is the single chokepoint
// every fetch, top-level or nested inside another query's execution, goes
// through, which is what lets it fold dependency edges, accumulator contents
// and cycle heads onto the caller's active frame in one place rather than at
// every ingredient.
type Shared struct {
	db *Database
}

// Database returns the handle's owning Database, for ingredient
// implementations that need the clock, storage or registry directly.
func (s *Shared) Database() *Database { return s.db }

// Events returns the read-only event channel subscribers drain.
func (s *Shared) Events() <-chan event.Event { return s.db.Events() }

// Fetch returns id's current value, executing or re-validating it as
// necessary. If called while another query is executing on this
// goroutine, the read is folded into that query's frame as a dependency
// edge; a top-level call (no active frame) simply returns the value.
//
// Panics with *kernel.CycleError or *kernel.CancelledError rather than
// returning an error, those are expected to unwind past any number of
// nested Fetch calls to the nearest boundary that chooses to recover them;
// no package of the engine recovers them itself, so that boundary is the
// external caller (for a cycle, for example through kernel.RecoverCycle).
func (s *Shared) Fetch(id ident.Id) any {
	return s.fetch(id).Value
}

// MaybeChangedAfter reports whether id's observable value changed after
// since, without recording a dependency edge on any active frame.
// query.Derived's own edge walk calls Storage.MaybeChangedAfter directly,
// not this method.
func (s *Shared) MaybeChangedAfter(id ident.Id, since revision.Revision) bool {
	s.db.cancel.Check()
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return s.db.storage.MaybeChangedAfter(id, since)
}

// fetch is Fetch's implementation, also used by Accumulated to reach
// the fetched memo's accumulator bag without duplicating the
// cancellation-check/dispatch/edge-folding sequence.
func (s *Shared) fetch(id ident.Id) fetchResult {
	s.db.events.Emit(event.Event{Kind: event.WillCheckCancellation, Ingredient: id.Ingredient, Key: id})
	s.db.cancel.Check()

	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	fetched := s.db.storage.Fetch(id)

	if caller := active.Current(); caller != nil {
		caller.AddEdge(edgeOf(id, fetched))
		caller.Accumulated().Merge(fetched.Accumulated)
		for head := range fetched.CycleHeads {
			caller.AddCycleHead(head)
		}
	}

	return fetchResult{value: fetched.Value, accumulated: fetched.Accumulated}
}

type fetchResult struct {
	value       any
	accumulated *accumulate.Bag
}

// Accumulated returns every T pushed by id's query and its transitive
// dependency tree, in pre-order. id is fetched first if it is not already
// current, exactly as a plain Fetch would.
func Accumulated[T any](s *Shared, id ident.Id) []T {
	return accumulate.Of[T](s.fetch(id).accumulated)
}
