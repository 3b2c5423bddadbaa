package query

import (
	"testing"

	"github.com/rippledb/ripple"
	"github.com/rippledb/ripple/active"
	"github.com/rippledb/ripple/ident"
	"github.com/rippledb/ripple/kernel"
	"github.com/stretchr/testify/assert"
)

func TestSpecified_SpecifyFromCreatingFrameSucceeds(t *testing.T) {
	db := ripple.New(0)
	interns := NewInterned[string](db)
	field := NewSpecified[int](db, interns)

	owner := kernel.Participant{Ingredient: 1, Key: ident.Id{Local: 1}}
	frame := active.NewFrame(owner)
	active.Push(frame)
	id := interns.Intern("node-a")

	assert.NotPanics(t, func() {
		field.Specify(id, 42)
	})
	active.Pop()

	fetched := field.Fetch(id)
	assert.Equal(t, 42, fetched.Value)
}

func TestSpecified_SpecifyFromOutsideAnyFramePanics(t *testing.T) {
	db := ripple.New(0)
	interns := NewInterned[string](db)
	field := NewSpecified[int](db, interns)

	owner := kernel.Participant{Ingredient: 1, Key: ident.Id{Local: 1}}
	frame := active.NewFrame(owner)
	active.Push(frame)
	id := interns.Intern("node-a")
	active.Pop() // the creating frame has already finished

	assert.Panics(t, func() {
		field.Specify(id, 42)
	})
}

func TestSpecified_SpecifyFromADifferentFrameThanTheCreatorPanics(t *testing.T) {
	db := ripple.New(0)
	interns := NewInterned[string](db)
	field := NewSpecified[int](db, interns)

	creator := active.NewFrame(kernel.Participant{Ingredient: 1, Key: ident.Id{Local: 1}})
	active.Push(creator)
	id := interns.Intern("node-a")
	active.Pop()

	other := active.NewFrame(kernel.Participant{Ingredient: 2, Key: ident.Id{Local: 2}})
	active.Push(other)
	assert.Panics(t, func() {
		field.Specify(id, 7)
	})
	active.Pop()
}

func TestSpecified_FetchOfUnspecifiedKeyPanics(t *testing.T) {
	db := ripple.New(0)
	interns := NewInterned[string](db)
	field := NewSpecified[int](db, interns)

	id := interns.Intern("never-specified")
	assert.Panics(t, func() {
		field.Fetch(id)
	})
}
