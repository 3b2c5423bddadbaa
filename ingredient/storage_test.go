package ingredient

import (
	"testing"

	"github.com/rippledb/ripple/cycle"
	"github.com/rippledb/ripple/ident"
	"github.com/rippledb/ripple/kernel"
	"github.com/rippledb/ripple/revision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIngredient is a minimal Ingredient used only to exercise Storage's
// registration and dispatch, independent of any real query semantics.
type fakeIngredient struct {
	values  map[ident.Id]any
	resets  int
	history []string
}

func newFakeIngredient() *fakeIngredient {
	return &fakeIngredient{values: make(map[ident.Id]any)}
}

func (f *fakeIngredient) MaybeChangedAfter(key ident.Id, since revision.Revision) bool {
	f.history = append(f.history, "maybeChangedAfter")
	return false
}

func (f *fakeIngredient) Fetch(key ident.Id) Fetched {
	f.history = append(f.history, "fetch")
	return Fetched{Value: f.values[key], Durability: revision.High, ChangedAt: revision.Start}
}

func (f *fakeIngredient) Origin(key ident.Id) (kernel.Origin, bool) {
	return kernel.Origin{Kind: kernel.BaseInput}, true
}

func (f *fakeIngredient) CycleRecoveryStrategy() cycle.Strategy {
	return cycle.Panic
}

func (f *fakeIngredient) ResetForNewRevision() {
	f.resets++
}

func (f *fakeIngredient) SetCapacity(n int) {}

func TestStorage_RegisterAssignsIncreasingIndices(t *testing.T) {
	s := NewStorage()
	a := newFakeIngredient()
	b := newFakeIngredient()

	idxA := s.Register(a)
	idxB := s.Register(b)

	assert.NotEqual(t, idxA, idxB)
	assert.Equal(t, ident.Index(1), idxA)
	assert.Equal(t, ident.Index(2), idxB)
}

func TestStorage_GetRoundTrips(t *testing.T) {
	s := NewStorage()
	a := newFakeIngredient()
	idx := s.Register(a)

	got, ok := s.Get(idx)
	require.True(t, ok)
	assert.Same(t, a, got)
}

func TestStorage_GetMissingIndex(t *testing.T) {
	s := NewStorage()
	_, ok := s.Get(ident.Index(7))
	assert.False(t, ok)

	_, ok = s.Get(0)
	assert.False(t, ok, "index 0 is reserved and never a real ingredient")
}

func TestStorage_DispatchRoutesToRegisteredIngredient(t *testing.T) {
	s := NewStorage()
	a := newFakeIngredient()
	idx := s.Register(a)
	key := ident.Id{Ingredient: idx, Local: 1}
	a.values[key] = 42

	got := s.Fetch(key)
	assert.Equal(t, 42, got.Value)
	assert.Equal(t, revision.High, got.Durability)
	assert.False(t, s.MaybeChangedAfter(key, revision.Start))

	origin, ok := s.Origin(key)
	require.True(t, ok)
	assert.Equal(t, kernel.BaseInput, origin.Kind)
}

func TestStorage_FetchOnUnregisteredIngredientPanics(t *testing.T) {
	s := NewStorage()
	assert.Panics(t, func() {
		s.Fetch(ident.Id{Ingredient: 99, Local: 1})
	})
}

func TestStorage_ResetForNewRevisionCallsEveryIngredient(t *testing.T) {
	s := NewStorage()
	a := newFakeIngredient()
	b := newFakeIngredient()
	s.Register(a)
	s.Register(b)

	s.ResetForNewRevision()

	assert.Equal(t, 1, a.resets)
	assert.Equal(t, 1, b.resets)
}
