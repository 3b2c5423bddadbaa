package kernel

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rippledb/ripple/ident"
)

// Participant names one (ingredient, key) pair involved in a cycle.
type Participant struct {
	Ingredient ident.Index
	Key        ident.Id
}

func (p Participant) String() string {
	return fmt.Sprintf("%d:%s", p.Ingredient, p.Key)
}

// CycleError is the payload of the panic raised when a Panic-strategy
// cycle is detected. Go has no catch_unwind/downcast pair; recover plus a
// type assertion against *CycleError is the idiomatic analogue, mirrored
// from original_source/src/runtime/cycle_participant.rs's
// CycleParticipant:recover.
type CycleError struct {
	Participants []Participant
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("ripple: cycle detected among %v", e.Participants)
}

// ThrowCycle panics with a *CycleError. Every goroutine on a closing
// cross-thread chain unwinds this way, since none of their query
// functions can ever finish; see active.Registry and
// CanonicalParticipant for the tie-break (DESIGN.md "Cross-thread cycle
// tie-break").
func ThrowCycle(participants []Participant) {
	panic(&CycleError{Participants: participants})
}

// CanonicalParticipant deterministically picks one participant out of a
// cycle's participant list, the one whose Key sorts greatest by
// (Ingredient, Local), so a caller that wants to log or surface a
// single representative error, rather than one per unwinding goroutine,
// can do so without an arbitrary pick. Every goroutine on the chain
// computes this over the same participant list, so they all agree on
// the same answer without coordinating.
func CanonicalParticipant(participants []Participant) Participant {
	canon := participants[0]
	for _, p := range participants[1:] {
		if p.Key.Ingredient > canon.Key.Ingredient ||
			(p.Key.Ingredient == canon.Key.Ingredient && p.Key.Local > canon.Key.Local) {
			canon = p
		}
	}
	return canon
}

// RecoverCycle runs fn; if fn panics with a *CycleError, recover calls
// recoverFn with it instead of propagating the panic. Any other panic
// value is re-raised unchanged.
func RecoverCycle[T any](fn func() T, recoverFn func(*CycleError) T) (result T) {
	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(*CycleError); ok {
				result = recoverFn(ce)
				return
			}
			panic(r)
		}
	}()
	return fn()
}

// CancelledError is the payload of the panic raised when a cancellation
// token fires mid-execution.
type CancelledError struct {
	Reason string
}

func (e *CancelledError) Error() string {
	if e.Reason == "" {
		return "ripple: execution cancelled"
	}
	return fmt.Sprintf("ripple: execution cancelled: %s", e.Reason)
}

// ThrowCancelled panics with a *CancelledError.
func ThrowCancelled(reason string) {
	panic(&CancelledError{Reason: reason})
}

// The remaining three error kinds are always fatal: there is no local
// recovery point in the core, so they are plain panics carrying a
// github.com/pkg/errors-wrapped message (stack trace attached at the panic
// site, for whoever's top-level recover logs it on the way out of the
// process).

// NotOurTrackedStruct panics: specify() was called from outside the
// query that created the tracked-struct key.
func NotOurTrackedStruct(key ident.Id) {
	panic(errors.Errorf("ripple: specify() called on %s from outside the query that created it (NotOurTrackedStruct)", key))
}

// ReadOfStaleTrackedStructField panics: a tracked-struct field was read
// after its owning memo was freed in a later revision.
func ReadOfStaleTrackedStructField(key ident.Id) {
	panic(errors.Errorf("ripple: read of tracked-struct field %s whose owning memo was freed in a later revision (ReadOfStaleTrackedStructField)", key))
}

// SingletonDuplicated panics: a singleton input was created a second
// time without first being removed.
func SingletonDuplicated(ingredient ident.Index) {
	panic(errors.Errorf("ripple: singleton input on ingredient %d created twice (SingletonDuplicated)", ingredient))
}
