package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/pkordes/frontdesk/internal/cache"
	"github.com/pkordes/frontdesk/internal/domain"
)

// Load performs the initial load: it restores the history backup, resyncs,
// and runs activation. When the store is unreachable it falls back to the
// cached snapshot and stays in degraded mode (not online, error kept) until
// a later sync succeeds. The returned error is the resync failure.
func (e *Engine) Load(ctx context.Context) error {
	defer e.begin()()

	e.restoreHistory(ctx)

	if err := e.resync(ctx); err != nil {
		e.restoreSnapshot(ctx)
		e.mu.Lock()
		e.status.Loading = false
		e.mu.Unlock()
		return fmt.Errorf("engine.Engine.Load: %w", err)
	}

	e.mu.Lock()
	e.status.Loading = false
	e.mu.Unlock()

	if err := e.checkAndActivate(ctx); err != nil {
		e.log.Warn("activation after load failed", "error", err)
	}
	return nil
}

// Resync pulls rooms and future reservations from the store and replaces the
// local views. On failure the last-known-good views are kept and the error is
// recorded in Status.
func (e *Engine) Resync(ctx context.Context) error {
	defer e.begin()()
	if err := e.resync(ctx); err != nil {
		return fmt.Errorf("engine.Engine.Resync: %w", err)
	}
	return nil
}

// Sync is one scheduled reconciliation: a resync followed by activation of
// any reservation that has come due.
func (e *Engine) Sync(ctx context.Context) error {
	defer e.begin()()
	if err := e.resync(ctx); err != nil {
		return fmt.Errorf("engine.Engine.Sync: %w", err)
	}
	if err := e.checkAndActivate(ctx); err != nil {
		return fmt.Errorf("engine.Engine.Sync: %w", err)
	}
	return nil
}

// resync requires e.cmd to be held.
func (e *Engine) resync(ctx context.Context) error {
	today := e.today()

	rooms, err := e.store.ListRooms(ctx)
	if err != nil {
		if ctx.Err() != nil {
			// The caller gave up; the store may be fine.
			return fmt.Errorf("list rooms: %w", err)
		}
		err = fmt.Errorf("%w: %w", domain.ErrConnectivity, err)
		e.mu.Lock()
		e.status.Online = false
		e.status.Err = err
		e.mu.Unlock()
		e.log.Error("resync failed", "error", err)
		return err
	}

	future, ferr := e.store.ListFutureReservations(ctx, today)
	partial := ferr != nil && ctx.Err() == nil
	ctx = context.WithoutCancel(ctx)

	e.mu.Lock()
	e.rooms = nonNil(rooms)
	e.status.Warning = ""
	switch {
	case partial:
		e.status.Warning = "future reservations could not be refreshed"
	case ferr == nil:
		e.future = nonNil(future)
	}
	e.status.Online = true
	e.status.LastSync = e.now()
	e.status.Err = nil
	snapRooms, snapFuture := e.rooms, e.future
	e.mu.Unlock()

	if partial {
		e.log.Warn("partial sync: keeping stale future reservations", "error", ferr)
	}

	if err := e.cache.Put(ctx, cache.KeyRooms, snapRooms); err != nil {
		e.log.Warn("cache rooms snapshot", "error", err)
	}
	if err := e.cache.Put(ctx, cache.KeyFutureReservations, snapFuture); err != nil {
		e.log.Warn("cache future reservations snapshot", "error", err)
	}
	return nil
}

// restoreSnapshot loads the cached rooms and future reservations into the
// local views. Only used when the initial load cannot reach the store.
func (e *Engine) restoreSnapshot(ctx context.Context) {
	var rooms []domain.Room
	ok, err := e.cache.Get(ctx, cache.KeyRooms, &rooms)
	if err != nil {
		e.log.Warn("read cached rooms", "error", err)
		return
	}
	if !ok {
		e.log.Warn("store unreachable and no cached snapshot; starting empty")
		return
	}

	var future []domain.Reservation
	if _, err := e.cache.Get(ctx, cache.KeyFutureReservations, &future); err != nil {
		e.log.Warn("read cached future reservations", "error", err)
	}

	e.mu.Lock()
	e.rooms = nonNil(rooms)
	if future != nil {
		e.future = future
	}
	e.mu.Unlock()
	e.log.Warn("store unreachable; serving cached snapshot", "rooms", len(rooms), "future_reservations", len(future))
}

func (e *Engine) restoreHistory(ctx context.Context) {
	var history []domain.HistoryEntry
	ok, err := e.cache.Get(ctx, cache.KeyGuestHistory, &history)
	if err != nil {
		e.log.Warn("read history backup", "error", err)
		return
	}
	if !ok {
		return
	}
	e.mu.Lock()
	e.history = nonNil(history)
	e.mu.Unlock()
}

// persistHistory backs the history up to the cache. Failures are logged only;
// the in-memory history stays authoritative. The backup follows a change that
// already happened, so it outlives the caller's context.
func (e *Engine) persistHistory(ctx context.Context) {
	e.mu.RLock()
	history := e.history
	e.mu.RUnlock()
	if err := e.cache.Put(context.WithoutCancel(ctx), cache.KeyGuestHistory, history); err != nil {
		e.log.Warn("persist history backup", "error", err)
	}
}

// writeFailed classifies a store write error. Not-found and validation errors
// pass through, as does a write abandoned because ctx ended; anything else
// becomes a transaction failure and is recorded in Status.
func (e *Engine) writeFailed(ctx context.Context, op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) || ctx.Err() != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	err = fmt.Errorf("%s: %w: %w", op, domain.ErrTransaction, err)
	e.mu.Lock()
	e.status.Err = err
	e.mu.Unlock()
	e.log.Error("store write failed", "op", op, "error", err)
	return err
}

// settle resyncs after a successful write. The write already committed, so
// the resync runs even if the caller has gone away, and a failure is recorded
// in Status but not returned.
func (e *Engine) settle(ctx context.Context) {
	_ = e.resync(context.WithoutCancel(ctx))
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
