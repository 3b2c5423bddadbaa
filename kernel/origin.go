// Package kernel holds the shared vocabulary types every other ripple
// package imports: a memo's Origin, its DependencyEdge list, the
// CycleHeads set, and the five fatal error kinds engine callers can
// observe.
package kernel

import (
	"fmt"

	"github.com/rippledb/ripple/ident"
	"github.com/rippledb/ripple/revision"
)

// DependencyEdge records that one running query read another's output.
type DependencyEdge struct {
	Ingredient    ident.Index
	Key           ident.Id
	Durability    revision.Durability
	LastChangedAt revision.Revision
}

// OriginKind distinguishes how a memo's value was produced.
type OriginKind uint8

const (
	// BaseInput: a value set directly via Input.Set, with no tracked
	// dependencies.
	BaseInput OriginKind = iota
	// Derived: a tracked-function result with a recorded dependency edge
	// list.
	Derived
	// DerivedUntracked: a tracked-function result that performed at
	// least one untracked (Untrack) read; durability is clamped to Low
	// and shallow validity is permanently disabled for this memo.
	DerivedUntracked
	// FixpointInitial: the provisional value installed on the first
	// recursive hit of a Fixpoint-strategy cycle head, from the user's
	// cycle_initial callback.
	FixpointInitial
	// Assigned: installed by specify(), or by a FallbackImmediate cycle
	// recovery's cycle_result callback.
	Assigned
)

func (k OriginKind) String() string {
	switch k {
	case BaseInput:
		return "BaseInput"
	case Derived:
		return "Derived"
	case DerivedUntracked:
		return "DerivedUntracked"
	case FixpointInitial:
		return "FixpointInitial"
	case Assigned:
		return "Assigned"
	default:
		return "Origin(?)"
	}
}

// Origin describes how the current memo was produced.
type Origin struct {
	Kind  OriginKind
	Edges []DependencyEdge // recorded for Derived, DerivedUntracked and specified (Assigned) memos
}

func (o Origin) String() string {
	if o.Kind == Derived {
		return fmt.Sprintf("%s(%d edges)", o.Kind, len(o.Edges))
	}
	return o.Kind.String()
}

// CycleHead names one query invocation that opened a cycle, on whose
// convergence other participants' finality depends.
type CycleHead struct {
	Ingredient ident.Index
	Key        ident.Id
}

// CycleHeads is the set of cycle heads a provisional memo depends on. An
// empty set marks a memo as non-provisional ("final").
type CycleHeads map[CycleHead]struct{}

// Union returns a new set containing every head from both inputs.
func (c CycleHeads) Union(other CycleHeads) CycleHeads {
	if len(c) == 0 && len(other) == 0 {
		return nil
	}
	out := make(CycleHeads, len(c)+len(other))
	for h := range c {
		out[h] = struct{}{}
	}
	for h := range other {
		out[h] = struct{}{}
	}
	return out
}

// Empty reports whether this memo is non-provisional.
func (c CycleHeads) Empty() bool {
	return len(c) == 0
}
