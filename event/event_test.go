package event

import (
	"testing"

	"github.com/rippledb/ripple/ident"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_EmitAndDrain(t *testing.T) {
	s := NewStream(4)
	s.Emit(Event{Kind: WillExecute, Key: ident.Id{Local: 1}})
	s.Emit(Event{Kind: DidValidateMemoizedValue, Key: ident.Id{Local: 2}})

	ev1 := <-s.Events()
	ev2 := <-s.Events()
	assert.Equal(t, WillExecute, ev1.Kind)
	assert.Equal(t, DidValidateMemoizedValue, ev2.Kind)
}

func TestStream_DropsOldestWhenFullRatherThanBlock(t *testing.T) {
	s := NewStream(2)
	s.Emit(Event{Kind: WillExecute, Key: ident.Id{Local: 1}})
	s.Emit(Event{Kind: WillExecute, Key: ident.Id{Local: 2}})
	s.Emit(Event{Kind: WillExecute, Key: ident.Id{Local: 3}}) // should not block

	require.Equal(t, 1, s.Dropped())
}

func TestStream_WillBlockOnCarriesOtherGoroutine(t *testing.T) {
	s := NewStream(1)
	s.Emit(Event{Kind: WillBlockOn, OtherGoroutine: 42})
	ev := <-s.Events()
	assert.Equal(t, uint64(42), ev.OtherGoroutine)
}
