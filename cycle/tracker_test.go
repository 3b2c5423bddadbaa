package cycle

import (
	"testing"

	"github.com/rippledb/ripple/ident"
	"github.com/rippledb/ripple/kernel"
	"github.com/stretchr/testify/assert"
)

func TestTracker_BeginThenAdvance(t *testing.T) {
	tr := NewTracker()
	head := kernel.CycleHead{Key: ident.Id{Local: 1}}

	assert.False(t, tr.Active(head))

	n := tr.Begin(head)
	assert.Equal(t, 1, n)
	assert.True(t, tr.Active(head))

	n = tr.Advance(head)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, tr.Round(head))
}

func TestTracker_BeginIsIdempotentWhileActive(t *testing.T) {
	tr := NewTracker()
	head := kernel.CycleHead{Key: ident.Id{Local: 1}}

	tr.Begin(head)
	tr.Advance(head)
	again := tr.Begin(head)
	assert.Equal(t, 2, again, "Begin must not reset an already-active head's round")
}

func TestTracker_EndClearsState(t *testing.T) {
	tr := NewTracker()
	head := kernel.CycleHead{Key: ident.Id{Local: 1}}

	tr.Begin(head)
	tr.End(head)

	assert.False(t, tr.Active(head))
	assert.Equal(t, 0, tr.Round(head))
}
