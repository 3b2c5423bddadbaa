package active

import (
	"sync"
	"testing"
	"time"

	"github.com/rippledb/ripple/ident"
	"github.com/rippledb/ripple/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pk(local uint32) kernel.Participant {
	return kernel.Participant{Key: ident.Id{Local: local}}
}

func TestRegistry_EnterUncontended(t *testing.T) {
	r := NewRegistry(nil)
	participants, isCycle := r.Enter(1, pk(1))
	assert.False(t, isCycle)
	assert.Nil(t, participants)
}

func TestRegistry_ExitThenReenter(t *testing.T) {
	r := NewRegistry(nil)
	p := pk(1)
	_, isCycle := r.Enter(1, p)
	require.False(t, isCycle)

	r.Exit(1, p)

	_, isCycle = r.Enter(2, p)
	assert.False(t, isCycle, "after Exit, a different goroutine may claim the same participant")
}

func TestRegistry_SameGoroutineReentrantIsImmediateCycle(t *testing.T) {
	r := NewRegistry(nil)
	p := pk(1)
	_, isCycle := r.Enter(1, p)
	require.False(t, isCycle)

	participants, isCycle := r.Enter(1, p)
	require.True(t, isCycle)
	assert.Equal(t, []kernel.Participant{p}, participants)
}

func TestRegistry_SecondGoroutineBlocksUntilExit(t *testing.T) {
	r := NewRegistry(nil)
	p := pk(1)
	_, isCycle := r.Enter(1, p)
	require.False(t, isCycle)

	done := make(chan struct{})
	go func() {
		participants, isCycle := r.Enter(2, p)
		assert.False(t, isCycle)
		assert.Nil(t, participants)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("goroutine 2 should still be blocked on goroutine 1's claim")
	case <-time.After(50 * time.Millisecond):
	}

	r.Exit(1, p)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("goroutine 2 never woke after Exit")
	}
}

// TestRegistry_CrossThreadCycle constructs the textbook two-goroutine
// cycle: g1 owns A and wants B, g2 owns B and wants A. Both Enter calls
// must return a cycle naming both participants, so neither goroutine
// hangs forever.
func TestRegistry_CrossThreadCycle(t *testing.T) {
	r := NewRegistry(nil)
	a, b := pk(1), pk(2)

	var wg sync.WaitGroup
	wg.Add(2)

	var participantsFromG1, participantsFromG2 []kernel.Participant
	var cycleFromG1, cycleFromG2 bool

	g1Ready := make(chan struct{})
	g2Ready := make(chan struct{})

	go func() {
		defer wg.Done()
		_, isCycle := r.Enter(1, a)
		require.False(t, isCycle)
		close(g1Ready)
		<-g2Ready
		participantsFromG1, cycleFromG1 = r.Enter(1, b)
	}()

	go func() {
		defer wg.Done()
		<-g1Ready
		_, isCycle := r.Enter(2, b)
		require.False(t, isCycle)
		close(g2Ready)
		participantsFromG2, cycleFromG2 = r.Enter(2, a)
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cross-thread cycle deadlocked instead of resolving")
	}

	assert.True(t, cycleFromG1)
	assert.True(t, cycleFromG2)
	assert.ElementsMatch(t, []kernel.Participant{a, b}, participantsFromG1)
	assert.ElementsMatch(t, []kernel.Participant{a, b}, participantsFromG2)
}
