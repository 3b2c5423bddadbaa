package active

import (
	"sync"
	"testing"

	"github.com/rippledb/ripple/ident"
	"github.com/rippledb/ripple/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStack_CurrentNilWhenEmpty(t *testing.T) {
	assert.Nil(t, Current())
}

func TestStack_PushPopNesting(t *testing.T) {
	outer := NewFrame(kernel.Participant{Key: ident.Id{Local: 1}})
	inner := NewFrame(kernel.Participant{Key: ident.Id{Local: 2}})

	Push(outer)
	require.Same(t, outer, Current())

	Push(inner)
	require.Same(t, inner, Current())

	Pop()
	assert.Same(t, outer, Current())

	Pop()
	assert.Nil(t, Current())
}

func TestStack_PerGoroutineIsolation(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(2)

	results := make([]bool, 2)
	for i := 0; i < 2; i++ {
		i := i
		go func() {
			defer wg.Done()
			assert.Nil(t, Current())
			f := NewFrame(kernel.Participant{Key: ident.Id{Local: uint32(i)}})
			Push(f)
			results[i] = Current() == f
			Pop()
		}()
	}
	wg.Wait()
	assert.True(t, results[0])
	assert.True(t, results[1])
}

func TestStack_UntrackHidesStack(t *testing.T) {
	f := NewFrame(kernel.Participant{Key: ident.Id{Local: 1}})
	Push(f)
	defer Pop()

	got := Untrack(func() *Frame {
		return Current()
	})
	assert.Nil(t, got)
	assert.Same(t, f, Current(), "stack must be restored after Untrack returns")
}
