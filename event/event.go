// Package event implements the engine's observability stream: the four
// event kinds, emitted non-blocking so a slow subscriber can never stall
// query execution.
package event

import (
	"github.com/rippledb/ripple/ident"
)

// Kind tags which of the four observable moments an Event records.
type Kind uint8

const (
	WillCheckCancellation Kind = iota
	WillExecute
	DidValidateMemoizedValue
	WillBlockOn
)

func (k Kind) String() string {
	switch k {
	case WillCheckCancellation:
		return "WillCheckCancellation"
	case WillExecute:
		return "WillExecute"
	case DidValidateMemoizedValue:
		return "DidValidateMemoizedValue"
	case WillBlockOn:
		return "WillBlockOn"
	default:
		return "Event(?)"
	}
}

// Event is one observable moment in the engine's execution.
type Event struct {
	Kind       Kind
	Ingredient ident.Index
	Key        ident.Id

	// OtherGoroutine is only set for WillBlockOn: the goroutine id this
	// caller is about to suspend waiting on.
	OtherGoroutine uint64
}

// Stream is a bounded, non-blocking event channel. Database owns one per
// instance; emission never blocks the caller, a full buffer drops the
// oldest pending event and counts it, rather than stall query execution,
// since this engine makes no real-time latency guarantee telemetry
// backpressure could violate.
type Stream struct {
	ch      chan Event
	dropped chan struct{} // one token per drop, drained by Dropped()
}

// NewStream creates a stream with the given buffer size.
func NewStream(buffer int) *Stream {
	if buffer <= 0 {
		buffer = 1
	}
	return &Stream{
		ch:      make(chan Event, buffer),
		dropped: make(chan struct{}, 1<<20),
	}
}

// Events returns the read-only channel subscribers drain.
func (s *Stream) Events() <-chan Event {
	return s.ch
}

// Emit publishes an event without blocking. If the buffer is full, the
// oldest buffered event is discarded to make room, subscribers trade
// completeness for the execution path never stalling.
func (s *Stream) Emit(ev Event) {
	for {
		select {
		case s.ch <- ev:
			return
		default:
		}
		select {
		case <-s.ch:
			select {
			case s.dropped <- struct{}{}:
			default:
			}
		default:
			// Raced with a consumer draining concurrently; try again.
		}
	}
}

// Dropped returns how many events have been discarded due to a full
// buffer since the stream was created (or last drained), for tests that
// want to assert telemetry never blocked execution.
func (s *Stream) Dropped() int {
	n := 0
	for {
		select {
		case <-s.dropped:
			n++
		default:
			return n
		}
	}
}

// Close closes the underlying channel. No further Emit calls may be made
// after Close.
func (s *Stream) Close() {
	close(s.ch)
}
