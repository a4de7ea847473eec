// Package engine is the reservation lifecycle engine. It owns the in-memory
// views of rooms, future reservations, and guest history, applies every
// state transition by writing through to the room store, and reconciles
// with the store by resyncing after each write.
//
// Commands and resyncs run one at a time. Queries read the last snapshot and
// never wait on store I/O.
package engine

import (
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/frontdesk/internal/cache"
	"github.com/pkordes/frontdesk/internal/domain"
	"github.com/pkordes/frontdesk/internal/pricing"
	"github.com/pkordes/frontdesk/internal/repo"
	"github.com/pkordes/frontdesk/internal/stats"
)

// Clock returns the current time. Production code uses time.Now.
type Clock func() time.Time

// Status describes the engine's relationship with the room store.
type Status struct {
	// Loading is true until the first load has finished, successfully or not.
	Loading bool
	// Online is true while the last resync reached the store.
	Online   bool
	LastSync time.Time
	// Err is the last unrecovered failure. A successful resync clears it.
	Err error
	// Warning reports a partial sync: rooms refreshed, future reservations stale.
	Warning string
	// Pending counts commands accepted but not yet settled.
	Pending int
}

// Healthy reports whether periodic sync should be running.
func (s Status) Healthy() bool {
	return !s.Loading && s.Err == nil
}

// Engine is safe for concurrent use.
type Engine struct {
	store repo.RoomStore
	cache cache.Store
	now   Clock
	log   *slog.Logger

	// cmd serializes commands and resyncs, including their store I/O.
	cmd     sync.Mutex
	pending atomic.Int32

	// activatedOn is the last calendar day activation ran. Guarded by cmd.
	activatedOn time.Time

	mu      sync.RWMutex
	rooms   []domain.Room
	future  []domain.Reservation
	history []domain.HistoryEntry
	status  Status
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.now = c }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New constructs an Engine. Call Load before serving queries.
func New(store repo.RoomStore, c cache.Store, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		cache:   c,
		now:     time.Now,
		log:     slog.Default(),
		rooms:   []domain.Room{},
		future:  []domain.Reservation{},
		history: []domain.HistoryEntry{},
		status:  Status{Loading: true},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// begin marks a command as pending and waits for exclusive access.
func (e *Engine) begin() func() {
	e.pending.Add(1)
	e.cmd.Lock()
	return func() {
		e.cmd.Unlock()
		e.pending.Add(-1)
	}
}

func (e *Engine) today() time.Time {
	return pricing.Date(e.now())
}

// ---- queries ---------------------------------------------------------------

// Rooms returns every room ordered by number.
func (e *Engine) Rooms() []domain.Room {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.rooms)
}

// FilteredRooms returns the rooms matching f.
func (e *Engine) FilteredRooms(f domain.Filters) []domain.Room {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return f.Apply(e.rooms)
}

// FutureReservations returns the raw future reservation set.
func (e *Engine) FutureReservations() []domain.Reservation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.future)
}

// FutureReservationViews projects each future reservation onto its room so
// it can be shown like a room: status reserved, with the reservation's guest.
// Reservations whose room is unknown are skipped. Stored rooms are not changed.
func (e *Engine) FutureReservationViews() []domain.Room {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]domain.Room, 0, len(e.future))
	for _, r := range e.future {
		room, ok := findRoom(e.rooms, r.RoomID)
		if !ok {
			continue
		}
		g := r.Guest
		id := r.ID
		room.Status = domain.RoomReserved
		room.Guest = &g
		room.StayID = &id
		out = append(out, room)
	}
	return out
}

// Statistics derives a fresh statistics snapshot.
func (e *Engine) Statistics() domain.Statistics {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return stats.Compute(e.rooms, len(e.future))
}

// GuestHistory returns the history, most recent first.
func (e *Engine) GuestHistory() []domain.HistoryEntry {
	e.mu.RLock()
	out := slices.Clone(e.history)
	e.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b domain.HistoryEntry) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// Status returns the current sync status.
func (e *Engine) Status() Status {
	e.mu.RLock()
	s := e.status
	e.mu.RUnlock()
	s.Pending = int(e.pending.Load())
	return s
}

// room looks a room up in the current snapshot.
func (e *Engine) room(id uuid.UUID) (domain.Room, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return findRoom(e.rooms, id)
}

func findRoom(rooms []domain.Room, id uuid.UUID) (domain.Room, bool) {
	for _, r := range rooms {
		if r.ID == id {
			return r, true
		}
	}
	return domain.Room{}, false
}
