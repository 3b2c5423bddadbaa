// Package ripple is the engine's own facade: Database owns every
// subsystem (clock, storage, runtime registry, event stream,
// cancellation token), and Shared/Exclusive are the two narrow handles
// that are the only way outside code ever touches a Database. Grounded
// on the teacher's maya.go/exports.go "wire everything together, expose
// a small typed facade" shape.
package ripple

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rippledb/ripple/active"
	"github.com/rippledb/ripple/cycle"
	"github.com/rippledb/ripple/event"
	"github.com/rippledb/ripple/ident"
	"github.com/rippledb/ripple/ingredient"
	"github.com/rippledb/ripple/internal/logger"
	"github.com/rippledb/ripple/revision"
)

// Database owns the engine's state for one independent incremental
// computation: one revision clock, one ingredient storage table, one
// cross-goroutine cycle-detection registry, one event stream, and one
// cancellation token. Multiple Databases may coexist in one process
// (each gets its own uuid, stamped into every emitted event).
type Database struct {
	id uuid.UUID

	clock    *revision.Clock
	storage  *ingredient.Storage
	registry *active.Registry
	tracker  *cycle.Tracker
	events   *event.Stream
	cancel   *CancellationToken

	// mu is the happens-before barrier between reads and writes: Shared
	// operations read-lock for their whole fetch, Exclusive operations
	// write-lock around the clock bump and reset, so no query execution
	// ever straddles a bump.
	mu sync.RWMutex
}

// New returns a Database positioned at revision.Start, with its event
// stream buffered to hold eventBuffer pending events before it starts
// dropping the oldest (see event.Stream.Dropped).
func New(eventBuffer int) *Database {
	events := event.NewStream(eventBuffer)
	db := &Database{
		id:       uuid.New(),
		clock:    revision.NewClock(),
		storage:  ingredient.NewStorage(),
		registry: active.NewRegistry(events),
		tracker:  cycle.NewTracker(),
		events:   events,
		cancel:   NewCancellationToken(),
	}
	logger.Info(logger.TagDatabase, "database %s created", db.id)
	return db
}

// ID identifies this Database instance, distinguishing its events from
// any sibling Database's in the same process.
func (db *Database) ID() uuid.UUID { return db.id }

// Storage exposes the ingredient table so ingredient constructors
// (query.Input, query.Derived, query.Interned) can register themselves
// at wiring time, before any Shared/Exclusive handle is ever handed out.
func (db *Database) Storage() *ingredient.Storage { return db.storage }

// Clock exposes the revision clock so ingredient implementations can
// read the current revision and last-changed stamps during fetch and
// maybe_changed_after.
func (db *Database) Clock() *revision.Clock { return db.clock }

// Registry exposes the cross-goroutine cycle-detection runtime so
// ingredient implementations (query.Derived) can claim and release
// participants around their own execution.
func (db *Database) Registry() *active.Registry { return db.registry }

// Tracker exposes the process-wide (per-database) fixpoint round
// bookkeeping, shared across every query.Derived ingredient so a cycle
// spanning more than one ingredient still agrees on a single round
// counter per head.
func (db *Database) Tracker() *cycle.Tracker { return db.tracker }

// Shared returns a new read-access handle. Any number of Shared handles
// may be held and used concurrently, from any number of goroutines.
func (db *Database) Shared() *Shared { return &Shared{db: db} }

// Exclusive returns a new write-access handle. Callers are responsible
// for the same discipline the teacher's batch.go assumes: at most one
// Exclusive handle's mutating methods run at a time, and never
// concurrently with another Exclusive mutation. Go's race detector, not
// this type, is what would catch a caller violating that; the write-lock
// only orders Exclusive mutation against Shared reads, not against a
// second concurrent Exclusive misuse.
func (db *Database) Exclusive() *Exclusive { return &Exclusive{db: db} }

// Events returns the read-only event channel subscribers drain.
func (db *Database) Events() <-chan event.Event { return db.events.Events() }

// Emit publishes an observability event for (ingredient, key). Exposed
// so ingredient implementations in package query can report
// WillExecute/DidValidateMemoizedValue moments without reaching into
// Database's private event stream.
func (db *Database) Emit(kind event.Kind, ing ident.Index, key ident.Id) {
	db.events.Emit(event.Event{Kind: kind, Ingredient: ing, Key: key})
}
