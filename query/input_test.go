package query

import (
	"testing"

	"github.com/rippledb/ripple"
	"github.com/rippledb/ripple/cycle"
	"github.com/rippledb/ripple/kernel"
	"github.com/rippledb/ripple/revision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func equalInts(a, b int) bool { return a == b }

func TestInput_SetThenFetch(t *testing.T) {
	db := ripple.New(0)
	in := NewInput[string, int](db)
	ex := db.Exclusive()

	in.Set(ex, "a", 1, revision.High)
	id := in.Id("a")

	fetched := in.Fetch(id)
	assert.Equal(t, 1, fetched.Value)
	assert.Equal(t, revision.High, fetched.Durability)
}

func TestInput_SetBackdatesWhenEqual(t *testing.T) {
	db := ripple.New(0)
	in := NewInput[string, int](db, WithEquality[string, int](equalInts))
	ex := db.Exclusive()

	in.Set(ex, "a", 1, revision.High)
	id := in.Id("a")
	first := in.Fetch(id)

	in.Set(ex, "a", 1, revision.High)
	second := in.Fetch(id)

	assert.Equal(t, first.ChangedAt, second.ChangedAt, "an equal overwrite must not advance changed_at")
}

func TestInput_SetAdvancesChangedAtWhenDifferent(t *testing.T) {
	db := ripple.New(0)
	in := NewInput[string, int](db, WithEquality[string, int](equalInts))
	ex := db.Exclusive()

	in.Set(ex, "a", 1, revision.High)
	id := in.Id("a")
	first := in.Fetch(id)

	in.Set(ex, "a", 2, revision.High)
	second := in.Fetch(id)

	assert.Greater(t, second.ChangedAt, first.ChangedAt)
}

func TestInput_SingletonCreateTwicePanics(t *testing.T) {
	db := ripple.New(0)
	in := NewInput[string, int](db, Singleton[string, int]())
	ex := db.Exclusive()

	in.Create(ex, "only", 1, revision.High)

	assert.Panics(t, func() {
		in.Create(ex, "only", 2, revision.High)
	})
}

func TestInput_SingletonCreateAfterRemoveSucceeds(t *testing.T) {
	db := ripple.New(0)
	in := NewInput[string, int](db, Singleton[string, int]())
	ex := db.Exclusive()

	in.Create(ex, "only", 1, revision.High)
	in.Remove(ex, "only")

	assert.NotPanics(t, func() {
		in.Create(ex, "only", 2, revision.High)
	})
}

func TestInput_RemoveThenRecreateGetsFreshId(t *testing.T) {
	db := ripple.New(0)
	in := NewInput[string, int](db)
	ex := db.Exclusive()

	in.Set(ex, "a", 1, revision.High)
	firstID := in.Id("a")

	in.Remove(ex, "a")
	in.Set(ex, "a", 2, revision.High)
	secondID := in.Id("a")

	assert.NotEqual(t, firstID, secondID)
}

func TestInput_OriginIsBaseInput(t *testing.T) {
	db := ripple.New(0)
	in := NewInput[string, int](db)
	ex := db.Exclusive()

	in.Set(ex, "a", 1, revision.High)
	origin, ok := in.Origin(in.Id("a"))
	require.True(t, ok)
	assert.Equal(t, kernel.BaseInput, origin.Kind)
}

func TestInput_CycleRecoveryStrategyIsAlwaysPanic(t *testing.T) {
	db := ripple.New(0)
	in := NewInput[string, int](db)
	assert.Equal(t, cycle.Panic, in.CycleRecoveryStrategy())
}
