package query

import (
	"testing"

	"github.com/rippledb/ripple"
	"github.com/rippledb/ripple/revision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUntrack_ReadIsNotRecordedAsADependency exercises the untracked-reads
// escape hatch: a query that reads another value inside Untrack must not
// record a dependency edge on it, so a later change to that value does
// not trigger re-execution.
func TestUntrack_ReadIsNotRecordedAsADependency(t *testing.T) {
	db := ripple.New(0)
	in := NewInput[string, int](db)
	ex := db.Exclusive()
	in.Set(ex, "x", 1, revision.High)

	calls := 0
	d := NewDerived(db, func(s *ripple.Shared, key string) int {
		calls++
		return Untrack(func() int {
			return s.Fetch(in.Id(key)).(int)
		})
	})
	id := d.Id("x")

	first := d.Fetch(id)
	require.Equal(t, 1, first.Value)

	in.Set(ex, "x", 99, revision.High)
	second := d.Fetch(id)

	assert.Equal(t, 1, calls, "an untracked read must not become a dependency edge triggering re-execution")
	assert.Equal(t, 1, second.Value, "the memo is never invalidated, so it still reports its first computed value")
}
