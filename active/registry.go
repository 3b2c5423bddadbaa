package active

import (
	"sync"

	"github.com/rippledb/ripple/event"
	"github.com/rippledb/ripple/kernel"
)

// Registry is the process-wide (one per Database) runtime that tracks
// which goroutine currently owns execution of which participant, and
// suspends a goroutine that needs the result of a participant some other
// goroutine is already running, detecting, before it suspends, whether
// doing so would close a cycle. Grounded on the teacher's
// internal/reactive/batch.go use of a sync.Cond to park and wake goroutines
// around a shared mutex, adapted here from batching deferred effects to
// blocking a reader on an in-flight computation of the same key.
type Registry struct {
	mu   sync.Mutex
	cond *sync.Cond

	// running maps a participant to the goroutine id currently computing
	// it. Entries are removed when that goroutine finishes (success,
	// cycle throw, or panic).
	running map[kernel.Participant]uint64
	wait    *waitGraph

	// resolved holds, per blocked goroutine id, the cycle a concurrent
	// Enter call has already worked out includes it. A blocked goroutine
	// cannot safely re-walk the wait graph itself after waking: by the
	// time it reacquires the lock, the edge that closed the cycle may
	// already have been removed by whichever goroutine discovered it,
	// so discovery always writes the result here for every goroutine on
	// the chain before broadcasting, and a waking goroutine just checks
	// its own entry.
	resolved map[uint64][]kernel.Participant

	events *event.Stream
}

// NewRegistry creates an empty registry. events may be nil, in which
// case WillBlockOn notifications are simply not emitted.
func NewRegistry(events *event.Stream) *Registry {
	r := &Registry{
		running:  make(map[kernel.Participant]uint64),
		wait:     newWaitGraph(),
		resolved: make(map[uint64][]kernel.Participant),
		events:   events,
	}
	r.cond = sync.NewCond(&r.mu)
	return r
}

func (r *Registry) runningOwner(p kernel.Participant) (uint64, bool) {
	gid, ok := r.running[p]
	return gid, ok
}

// Enter claims p for the calling goroutine. If another goroutine is
// already running p, Enter blocks until that goroutine finishes,
// EXCEPT when waiting would close a cycle in the wait graph, in which
// case Enter returns (participants, true) without ever blocking, and the
// caller is responsible for cycle recovery. Every goroutine on the closing
// chain, not just the one whose Enter call happened to notice, receives
// the same (participants, true) result, so none of them hangs forever;
// each caller then runs its own cycle recovery. Under the Panic strategy
// package query raises Cycle on every one of them: no single goroutine is
// chosen to raise it alone, and none receives a completed value from the
// other (kernel.CanonicalParticipant only names one participant in a log
// line).
// On a same-goroutine reentrant call (the common single-thread
// recursive-query cycle), Enter always returns immediately with the
// single-participant cycle, since a goroutine can never be blocked on
// itself.
func (r *Registry) Enter(self uint64, p kernel.Participant) (participants []kernel.Participant, isCycle bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cyc, ok := r.resolved[self]; ok {
		delete(r.resolved, self)
		return cyc, true
	}

	owner, running := r.running[p]
	if !running {
		r.running[p] = self
		return nil, false
	}
	if owner == self {
		return []kernel.Participant{p}, true
	}

	r.wait.addEdge(self, p)
	defer r.wait.removeEdge(self)

	for {
		if chain, ok := r.closingChain(owner, self); ok {
			r.resolveChain(chain)
			r.cond.Broadcast()
			cyc := r.resolved[self]
			delete(r.resolved, self)
			return cyc, true
		}

		if r.events != nil {
			r.events.Emit(event.Event{
				Kind:           event.WillBlockOn,
				Ingredient:     p.Ingredient,
				Key:            p.Key,
				OtherGoroutine: owner,
			})
		}

		r.cond.Wait()

		if cyc, ok := r.resolved[self]; ok {
			delete(r.resolved, self)
			return cyc, true
		}

		owner, running = r.running[p]
		if !running {
			r.running[p] = self
			return nil, false
		}
		if owner == self {
			return []kernel.Participant{p}, true
		}
	}
}

// closingChain walks the blocked-on graph starting at owner, looking for
// self. It returns the full chain of goroutine ids from owner to self
// (inclusive) when found.
func (r *Registry) closingChain(owner, self uint64) (chain []uint64, found bool) {
	cur := owner
	visited := map[uint64]bool{}
	for {
		chain = append(chain, cur)
		if cur == self {
			return chain, true
		}
		if visited[cur] {
			return nil, false
		}
		visited[cur] = true

		blockedP, isBlocked := r.wait.blockedOn[cur]
		if !isBlocked {
			return nil, false
		}
		next, owns := r.runningOwner(blockedP)
		if !owns {
			return nil, false
		}
		cur = next
	}
}

// resolveChain records the same cycle participant list for every
// goroutine on chain, so each of them returns a cycle the next time it
// checks r.resolved, regardless of which one actually performed the
// detection. The participant list is built by collecting each chain
// goroutine's currently-owned participant.
func (r *Registry) resolveChain(chain []uint64) {
	participants := make([]kernel.Participant, 0, len(chain))
	for _, gid := range chain {
		for participant, owner := range r.running {
			if owner == gid {
				participants = append(participants, participant)
				break
			}
		}
	}
	for _, gid := range chain {
		r.resolved[gid] = participants
	}
}

// Exit releases self's claim on p and wakes every goroutine waiting on
// the registry to re-check whether its own target is now free.
func (r *Registry) Exit(self uint64, p kernel.Participant) {
	r.mu.Lock()
	if r.running[p] == self {
		delete(r.running, p)
	}
	r.mu.Unlock()
	r.cond.Broadcast()
}
