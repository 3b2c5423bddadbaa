package query

import "github.com/rippledb/ripple/active"

// Untrack runs fn without recording any of its reads as dependencies of
// the calling query: the engine's untracked-reads escape hatch. The
// calling query's memo is durability-clamped to Low and permanently
// loses shallow-validity eligibility. The untracked reads leave no edge,
// so a later change to what fn read does not by itself make the calling
// query re-execute.
func Untrack[T any](fn func() T) T {
	if frame := active.Current(); frame != nil {
		frame.MarkUntracked()
	}
	return active.Untrack(fn)
}
