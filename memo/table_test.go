package memo

import (
	"testing"

	"github.com/rippledb/ripple/ident"
	"github.com/rippledb/ripple/kernel"
	"github.com/rippledb/ripple/revision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_InstallAndGet(t *testing.T) {
	tbl := NewTable[ident.Id, int]()
	key := ident.Id{Ingredient: 1, Local: 1}

	entry := &Entry[int]{Value: 5, Meta: Meta{VerifiedAt: revision.Start, ChangedAt: revision.Start}}
	tbl.Install(key, entry, revision.Start)

	got, ok := tbl.Get(key)
	require.True(t, ok)
	assert.Equal(t, 5, got.Value)
}

func TestTable_MissingKey(t *testing.T) {
	tbl := NewTable[ident.Id, int]()
	_, ok := tbl.Get(ident.Id{Local: 99})
	assert.False(t, ok)
}

func TestTable_DropValueKeepsMeta(t *testing.T) {
	tbl := NewTable[ident.Id, int]()
	key := ident.Id{Local: 1}
	tbl.Install(key, &Entry[int]{Value: 42, Meta: Meta{VerifiedAt: 3, ChangedAt: 2, Durability: revision.High}}, revision.Start)

	tbl.DropValue(key)

	got, ok := tbl.Get(key)
	require.True(t, ok)
	assert.Equal(t, 0, got.Value)
	assert.Equal(t, revision.Revision(3), got.Meta.VerifiedAt)
	assert.Equal(t, revision.Revision(2), got.Meta.ChangedAt)
	assert.Equal(t, revision.High, got.Meta.Durability)
}

func TestTable_DrainFreeListOnlyBelowSafeRevision(t *testing.T) {
	tbl := NewTable[ident.Id, int]()
	key := ident.Id{Local: 1}

	tbl.Install(key, &Entry[int]{Value: 1}, revision.Start)
	tbl.Install(key, &Entry[int]{Value: 2}, revision.Revision(2)) // replaced in rev 2: the first entry's free is deferred

	tbl.DrainFreeList(revision.Revision(3)) // rev 2 < 3: freed
	tbl.freeMu.Lock()
	remaining := len(tbl.free)
	tbl.freeMu.Unlock()
	assert.Equal(t, 0, remaining)
}

func TestTable_Delete(t *testing.T) {
	tbl := NewTable[ident.Id, int]()
	key := ident.Id{Local: 1}
	tbl.Install(key, &Entry[int]{Value: 1}, revision.Start)
	tbl.Delete(key)

	_, ok := tbl.Get(key)
	assert.False(t, ok)
}

func TestMeta_ProvisionalAndComputed(t *testing.T) {
	var zero Meta
	assert.False(t, zero.Computed())
	assert.False(t, zero.Provisional())

	m := Meta{VerifiedAt: revision.Start, CycleHeads: kernel.CycleHeads{{Ingredient: 1}: {}}}
	assert.True(t, m.Computed())
	assert.True(t, m.Provisional())
}
