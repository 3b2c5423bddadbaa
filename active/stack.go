package active

import (
	"runtime"
	"sync"
)

// Goroutine-local frame stack. Grounded closely on the teacher's
// internal/reactive/tracking.go getGoroutineID/pushEffect/popEffect: Go
// has no first-class thread-local storage, and parsing the goroutine id
// out of a runtime.Stack dump is exactly the trick the teacher already
// uses to fake one. The active-query frame needs exactly this kind of
// thread-local stack, so this stays rather than being replaced by
// context.Context threading, which would require every Ingredient
// implementation's signature to carry a context parameter purely for
// bookkeeping the engine itself should own.
var stacks sync.Map // goroutineID -> *stackEntry

type stackEntry struct {
	frame *Frame
	prev  *stackEntry
}

func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	seenDigit := false
	for i := 0; i < n; i++ {
		c := buf[i]
		if c >= '0' && c <= '9' {
			seenDigit = true
			id = id*10 + uint64(c-'0')
		} else if seenDigit {
			break
		}
	}
	if !seenDigit {
		// Should never happen: every "goroutine N [...]" dump starts
		// with a number. Fall back to something non-zero and
		// deliberately wrong rather than collide silently with gid 0.
		id = ^uint64(0)
	}
	return id
}

// GoroutineID exposes this goroutine's id to package query, which needs
// it as the "self" argument to Registry.Enter/Exit.
func GoroutineID() uint64 {
	return goroutineID()
}

// Current returns the frame currently executing on this goroutine, or
// nil if no query is active.
func Current() *Frame {
	gid := goroutineID()
	v, ok := stacks.Load(gid)
	if !ok {
		return nil
	}
	entry := v.(*stackEntry)
	if entry == nil {
		return nil
	}
	return entry.frame
}

// Push makes f the active frame on this goroutine, nesting under
// whatever frame (if any) was previously active.
func Push(f *Frame) {
	gid := goroutineID()
	var prev *stackEntry
	if v, ok := stacks.Load(gid); ok {
		prev = v.(*stackEntry)
	}
	stacks.Store(gid, &stackEntry{frame: f, prev: prev})
}

// Pop removes the current goroutine's top frame, restoring whatever was
// active before it (if anything).
func Pop() {
	gid := goroutineID()
	v, ok := stacks.Load(gid)
	if !ok {
		return
	}
	entry := v.(*stackEntry)
	if entry.prev != nil {
		stacks.Store(gid, entry.prev)
	} else {
		stacks.Delete(gid)
	}
}

// Untrack runs fn with this goroutine's frame stack hidden, so any reads
// it performs are not recorded as dependencies of the caller's frame:
// this is the engine's untracked-reads escape hatch. The caller is
// responsible for calling MarkUntracked on its own frame; Untrack itself
// only suppresses dependency recording for the duration of fn.
func Untrack[T any](fn func() T) T {
	gid := goroutineID()
	saved, had := stacks.Load(gid)
	stacks.Delete(gid)
	defer func() {
		if had {
			stacks.Store(gid, saved)
		}
	}()
	return fn()
}
