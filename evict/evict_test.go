package evict

import (
	"testing"

	"github.com/rippledb/ripple/ident"
	"github.com/stretchr/testify/assert"
)

func TestNoop_NeverEvicts(t *testing.T) {
	n := Noop{}
	n.RecordUse(ident.Id{Local: 1})
	n.SetCapacity(1)
	called := false
	n.ForEachEvicted(func(ident.Id) { called = true })
	assert.False(t, called)
}

func TestLRU_EvictsOverCapacity(t *testing.T) {
	l := NewLRU(2)
	a := ident.Id{Local: 1}
	b := ident.Id{Local: 2}
	c := ident.Id{Local: 3}

	l.RecordUse(a)
	l.RecordUse(b)
	l.RecordUse(c) // should evict a (least recently used)

	var evicted []ident.Id
	l.ForEachEvicted(func(id ident.Id) { evicted = append(evicted, id) })

	assert.Equal(t, []ident.Id{a}, evicted)
}

func TestLRU_ForEachEvictedDrainsOnce(t *testing.T) {
	l := NewLRU(1)
	l.RecordUse(ident.Id{Local: 1})
	l.RecordUse(ident.Id{Local: 2}) // evicts id 1

	var first, second []ident.Id
	l.ForEachEvicted(func(id ident.Id) { first = append(first, id) })
	l.ForEachEvicted(func(id ident.Id) { second = append(second, id) })

	assert.Len(t, first, 1)
	assert.Empty(t, second)
}

func TestLRU_SetCapacityGrows(t *testing.T) {
	l := NewLRU(1)
	l.SetCapacity(3)
	l.RecordUse(ident.Id{Local: 1})
	l.RecordUse(ident.Id{Local: 2})
	l.RecordUse(ident.Id{Local: 3})

	var evicted []ident.Id
	l.ForEachEvicted(func(id ident.Id) { evicted = append(evicted, id) })
	assert.Empty(t, evicted)
}
