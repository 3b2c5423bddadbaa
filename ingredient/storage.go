package ingredient

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/rippledb/ripple/ident"
	"github.com/rippledb/ripple/kernel"
	"github.com/rippledb/ripple/revision"
)

// Storage assigns each registered Ingredient a stable ident.Index at
// construction time and routes every (ingredient, key) call to the
// right one. Grounded on the teacher's internal/graph/graph.go
// registration-map pattern (a single map plus a monotonic counter
// protected by one mutex), generalized from node/edge registration to
// ingredient registration.
type Storage struct {
	mu          sync.RWMutex
	ingredients []Ingredient
}

// NewStorage returns an empty Storage. Index 0 is never handed out to a
// caller-registered ingredient (slot 0 is an empty placeholder, so
// ident.Nil's ingredient 0 never names a real one), so registration
// starts at 1.
func NewStorage() *Storage {
	return &Storage{ingredients: make([]Ingredient, 1)}
}

// Register assigns ing the next available index and returns it. Safe to
// call concurrently, though in practice every ingredient is registered
// once up front while building a Database.
func (s *Storage) Register(ing Ingredient) ident.Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := ident.Index(len(s.ingredients))
	s.ingredients = append(s.ingredients, ing)
	return idx
}

// Get returns the ingredient registered at idx.
func (s *Storage) Get(idx ident.Index) (Ingredient, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(idx) <= 0 || int(idx) >= len(s.ingredients) {
		return nil, false
	}
	return s.ingredients[idx], true
}

// mustGet panics (an unrecovered bug, not a cycle or cancellation) if id
// names an ingredient that was never registered, every valid ident.Id
// in circulation was handed out by some already-registered ingredient,
// so this can only happen if a caller fabricated an Id by hand.
func (s *Storage) mustGet(id ident.Id) Ingredient {
	ing, ok := s.Get(id.Ingredient)
	if !ok {
		panic(errors.Errorf("ripple: no ingredient registered at index %d (id %s)", id.Ingredient, id))
	}
	return ing
}

// MaybeChangedAfter dispatches to id's ingredient.
func (s *Storage) MaybeChangedAfter(id ident.Id, since revision.Revision) bool {
	return s.mustGet(id).MaybeChangedAfter(id, since)
}

// Fetch dispatches to id's ingredient.
func (s *Storage) Fetch(id ident.Id) Fetched {
	return s.mustGet(id).Fetch(id)
}

// Origin dispatches to id's ingredient.
func (s *Storage) Origin(id ident.Id) (kernel.Origin, bool) {
	return s.mustGet(id).Origin(id)
}

// ResetForNewRevision calls ResetForNewRevision on every registered
// ingredient, in registration order.
func (s *Storage) ResetForNewRevision() {
	s.mu.RLock()
	ings := append([]Ingredient(nil), s.ingredients[1:]...)
	s.mu.RUnlock()

	for _, ing := range ings {
		ing.ResetForNewRevision()
	}
}
