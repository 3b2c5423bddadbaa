package revision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClock_StartsAtStart(t *testing.T) {
	c := NewClock()
	assert.Equal(t, Start, c.Current())
	for d := Low; d <= High; d++ {
		assert.Equal(t, Start, c.LastChanged(d))
	}
}

func TestClock_BumpAdvancesCurrent(t *testing.T) {
	c := NewClock()
	r1 := c.Bump(Low)
	r2 := c.Bump(Low)
	require.Greater(t, uint64(r2), uint64(r1))
	assert.Equal(t, r2, c.Current())
}

func TestClock_DurabilityInvariant(t *testing.T) {
	// Invariant last_changed(HIGH) <= last_changed(MEDIUM) <= last_changed(LOW)
	// <= current
	c := NewClock()
	c.Bump(Low)
	c.Bump(High)
	c.Bump(Medium)

	assert.LessOrEqual(t, uint64(c.LastChanged(High)), uint64(c.LastChanged(Medium)))
	assert.LessOrEqual(t, uint64(c.LastChanged(Medium)), uint64(c.LastChanged(Low)))
	assert.LessOrEqual(t, uint64(c.LastChanged(Low)), uint64(c.Current()))
}

func TestClock_BumpHighStampsAllLevels(t *testing.T) {
	c := NewClock()
	r := c.Bump(High)

	assert.Equal(t, r, c.LastChanged(Low))
	assert.Equal(t, r, c.LastChanged(Medium))
	assert.Equal(t, r, c.LastChanged(High))
}

func TestClock_BumpLowOnlyStampsLow(t *testing.T) {
	c := NewClock()
	before := c.Current()
	r := c.Bump(Low)

	assert.Equal(t, r, c.LastChanged(Low))
	assert.Equal(t, before, c.LastChanged(Medium))
	assert.Equal(t, before, c.LastChanged(High))
}
