// Package active implements the per-goroutine active-query stack and the
// process-wide runtime registry used for cycle detection.
package active

import (
	"github.com/rippledb/ripple/accumulate"
	"github.com/rippledb/ripple/kernel"
	"github.com/rippledb/ripple/revision"
)

// Frame is the mutable record one executing query accumulates: the
// dependency edges it reads, the coarsest-yet durability seen, the
// latest changed_at among its dependencies, whether it made an untracked
// read, and which cycle heads (if any) it encountered. Consumed into a
// memo on successful completion; discarded on a cycle throw.
type Frame struct {
	Owner kernel.Participant

	edges         []kernel.DependencyEdge
	minDurability revision.Durability
	maxChangedAt  revision.Revision
	untrackedRead bool
	cycleHeads    kernel.CycleHeads
	accumulated   *accumulate.Bag
}

// NewFrame returns a fresh frame for the query about to execute as
// owner. minDurability starts at High (the coarsest) because Min folds
// it down as edges are recorded; a frame with zero edges keeps High,
// matching an input-free, dependency-free computation being maximally
// durable.
func NewFrame(owner kernel.Participant) *Frame {
	return &Frame{
		Owner:         owner,
		minDurability: revision.High,
		accumulated:   accumulate.NewBag(),
	}
}

// AddEdge records a dependency read by this frame's query, folding the
// edge's durability and changed_at into the frame's running summary.
func (f *Frame) AddEdge(e kernel.DependencyEdge) {
	f.edges = append(f.edges, e)
	f.minDurability = revision.Min(f.minDurability, e.Durability)
	if e.LastChangedAt > f.maxChangedAt {
		f.maxChangedAt = e.LastChangedAt
	}
}

// MarkUntracked records that this frame performed at least one
// untracked (Untrack) read: durability is clamped to Low and shallow
// validity must never be used for the resulting memo again.
func (f *Frame) MarkUntracked() {
	f.untrackedRead = true
}

// Untracked reports whether this frame made an untracked read.
func (f *Frame) Untracked() bool {
	return f.untrackedRead
}

// AddCycleHead records that this frame's query read a provisional value
// belonging to the given cycle head.
func (f *Frame) AddCycleHead(h kernel.CycleHead) {
	if f.cycleHeads == nil {
		f.cycleHeads = make(kernel.CycleHeads)
	}
	f.cycleHeads[h] = struct{}{}
}

// Edges returns the recorded dependency edges, in recording order.
func (f *Frame) Edges() []kernel.DependencyEdge {
	return f.edges
}

// MinDurability returns the coarsest shared durability across all
// recorded edges, clamped to Low if this frame made an untracked read.
func (f *Frame) MinDurability() revision.Durability {
	if f.untrackedRead {
		return revision.Low
	}
	return f.minDurability
}

// MaxChangedAt returns the latest changed_at among all recorded edges.
func (f *Frame) MaxChangedAt() revision.Revision {
	return f.maxChangedAt
}

// CycleHeads returns the set of cycle heads encountered while executing.
func (f *Frame) CycleHeads() kernel.CycleHeads {
	return f.cycleHeads
}

// RemoveCycleHead deletes h from this frame's recorded cycle-head set. A
// Fixpoint head calls this on its own last round's frame once it has
// converged: that round's self-recursive read folded the head onto the
// frame via AddCycleHead, but the head installing its own final memo is
// exactly what makes it no longer provisional on itself.
func (f *Frame) RemoveCycleHead(h kernel.CycleHead) {
	delete(f.cycleHeads, h)
}

// Accumulated returns this frame's own accumulator bag, which the caller
// should Merge into after every child fetch completes, in call order.
func (f *Frame) Accumulated() *accumulate.Bag {
	return f.accumulated
}
