package evict

import "github.com/rippledb/ripple/ident"

// Noop never evicts; the cache grows unbounded. This is the default
// policy when no LRU capacity is specified.
type Noop struct{}

func (Noop) RecordUse(ident.Id)            {}
func (Noop) SetCapacity(int)               {}
func (Noop) ForEachEvicted(func(ident.Id)) {}

var _ Policy = Noop{}
