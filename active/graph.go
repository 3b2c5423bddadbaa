package active

import "github.com/rippledb/ripple/kernel"

type participant = kernel.Participant

// waitGraph is the process-wide "blocked-on" graph: an edge g -> p records
// that goroutine g is currently suspended waiting for participant p to
// finish running on some other goroutine. Adapted from the teacher's
// internal/graph/graph.go Graph (its fromIndex/toIndex adjacency-index
// style), repurposed from a general dependency graph into a small,
// transient graph over currently-suspended goroutines, used only to
// detect a cross-thread cycle before a goroutine commits to waiting.
// waitGraph has no locking of its own: every method is only ever called
// by Registry while it holds its own mu, so the graph's fields are
// protected by that outer lock rather than a second one here.
type waitGraph struct {
	// edge: goroutine id -> the participant it is blocked on.
	blockedOn map[uint64]participant
}

func newWaitGraph() *waitGraph {
	return &waitGraph{blockedOn: make(map[uint64]participant)}
}

// addEdge records that goroutine g is now blocked on p.
func (g *waitGraph) addEdge(gid uint64, p participant) {
	g.blockedOn[gid] = p
}

// removeEdge clears gid's blocked-on edge, once it stops waiting.
func (g *waitGraph) removeEdge(gid uint64) {
	delete(g.blockedOn, gid)
}

// wouldClose reports whether goroutine gid waiting on the goroutine
// owner (which currently runs the participant gid wants) would close a cycle in
// the blocked-on graph: i.e. whether owner is transitively already
// waiting (through zero or more hops) on something gid itself owns.
// runningOwner is the participant -> owning-goroutine lookup the caller
// (Registry) maintains; wouldClose only reads edges, it does not mutate
// any state.
func (g *waitGraph) wouldClose(owner, gid uint64, runningOwner func(participant) (uint64, bool)) bool {
	cur := owner
	visited := map[uint64]bool{}
	for {
		if cur == gid {
			return true
		}
		if visited[cur] {
			return false // already walked this far without finding gid
		}
		visited[cur] = true

		blockedP, isBlocked := g.blockedOn[cur]
		if !isBlocked {
			return false
		}
		next, owns := runningOwner(blockedP)
		if !owns {
			return false
		}
		cur = next
	}
}
