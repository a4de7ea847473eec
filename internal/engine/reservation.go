package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/frontdesk/internal/domain"
	"github.com/pkordes/frontdesk/internal/pricing"
)

// MakeReservation books a stay in a room. A check-in on or before today
// occupies the room immediately; a later check-in becomes a future
// reservation and leaves the room untouched. Either way one active history
// entry is recorded for the booking.
//
// Returns domain.ErrNotFound for an unknown room, domain.ErrValidation for
// bad guest data, an over-capacity party, or a date clash, and
// domain.ErrTransaction when the store write fails. Nothing changes locally
// on failure.
func (e *Engine) MakeReservation(ctx context.Context, roomID uuid.UUID, guest domain.Guest) (domain.Reservation, error) {
	const op = "engine.Engine.MakeReservation"
	defer e.begin()()

	room, ok := e.room(roomID)
	if !ok {
		return domain.Reservation{}, fmt.Errorf("%s: room %s: %w", op, roomID, domain.ErrNotFound)
	}
	if err := validateGuest(guest, room); err != nil {
		return domain.Reservation{}, fmt.Errorf("%s: %w", op, err)
	}

	today := e.today()
	immediate := !pricing.Date(guest.CheckIn).After(today)
	if err := e.checkAvailability(room, guest, immediate); err != nil {
		return domain.Reservation{}, fmt.Errorf("%s: %w", op, err)
	}

	guest = guest.WithoutExpenses()
	res, err := e.store.CreateReservation(ctx, roomID, guest, today)
	if err != nil {
		return domain.Reservation{}, e.writeFailed(ctx, op, err)
	}

	e.mu.Lock()
	e.history = append([]domain.HistoryEntry{e.newHistoryEntry(room, res.ID, res.Guest)}, e.history...)
	e.mu.Unlock()
	e.persistHistory(ctx)

	e.log.Info("reservation created",
		"reservation_id", res.ID, "room", room.Number, "status", res.Status, "check_in", pricing.Date(guest.CheckIn).Format(time.DateOnly))

	e.settle(ctx)
	return res, nil
}

// CheckAndActivateFutureReservations promotes every reservation whose
// check-in has arrived. It asks the store only when a locally known
// reservation is due or when activation has not yet run today, so calling it
// repeatedly is cheap and changes nothing once everything due is promoted.
func (e *Engine) CheckAndActivateFutureReservations(ctx context.Context) error {
	defer e.begin()()
	if err := e.checkAndActivate(ctx); err != nil {
		return fmt.Errorf("engine.Engine.CheckAndActivateFutureReservations: %w", err)
	}
	return nil
}

// ActivateDue promotes due reservations unconditionally. It backs the daily
// activation job.
func (e *Engine) ActivateDue(ctx context.Context) error {
	defer e.begin()()
	if err := e.activate(ctx); err != nil {
		return fmt.Errorf("engine.Engine.ActivateDue: %w", err)
	}
	return nil
}

// checkAndActivate requires e.cmd to be held.
func (e *Engine) checkAndActivate(ctx context.Context) error {
	if !e.activationDue() {
		return nil
	}
	return e.activate(ctx)
}

func (e *Engine) activationDue() bool {
	today := e.today()
	if !e.activatedOn.Equal(today) {
		return true
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, r := range e.future {
		if !pricing.Date(r.Guest.CheckIn).After(today) {
			return true
		}
	}
	return false
}

// activate runs the store's batch promotion, resyncs, and records a history
// entry for each promoted stay that does not have one yet.
func (e *Engine) activate(ctx context.Context) error {
	today := e.today()
	promoted, err := e.store.ActivateDueReservations(ctx, today)
	if err != nil {
		return e.writeFailed(ctx, "activate", err)
	}
	ctx = context.WithoutCancel(ctx)
	e.activatedOn = today
	if len(promoted) == 0 {
		return nil
	}

	e.settle(ctx)

	e.mu.Lock()
	added := 0
	for _, r := range promoted {
		room, ok := findRoom(e.rooms, r.RoomID)
		if !ok {
			continue
		}
		if e.hasHistoryFor(r.ID, room.Number, r.Guest.Name) {
			continue
		}
		e.history = append([]domain.HistoryEntry{e.newHistoryEntry(room, r.ID, r.Guest)}, e.history...)
		added++
	}
	e.mu.Unlock()
	if added > 0 {
		e.persistHistory(ctx)
	}

	e.log.Info("reservations activated", "count", len(promoted), "history_added", added)
	return nil
}

// CancelFutureReservation cancels a reservation in the future set and marks
// its history entry cancelled. The room is not touched.
// Returns domain.ErrNotFound if the reservation is not in the future set.
func (e *Engine) CancelFutureReservation(ctx context.Context, id uuid.UUID) error {
	const op = "engine.Engine.CancelFutureReservation"
	defer e.begin()()

	res, ok := e.futureReservation(id)
	if !ok {
		return fmt.Errorf("%s: reservation %s: %w", op, id, domain.ErrNotFound)
	}
	if err := e.store.CancelReservation(ctx, id); err != nil {
		return e.writeFailed(ctx, op, err)
	}

	e.markCancelled(ctx, res)
	e.log.Info("reservation cancelled", "reservation_id", id)
	e.settle(ctx)
	return nil
}

func (e *Engine) futureReservation(id uuid.UUID) (domain.Reservation, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, r := range e.future {
		if r.ID == id {
			return r, true
		}
	}
	return domain.Reservation{}, false
}

// validateGuest checks the guest data against the room it is booked into.
func validateGuest(g domain.Guest, room domain.Room) error {
	switch {
	case strings.TrimSpace(g.Name) == "":
		return fmt.Errorf("%w: guest name is required", domain.ErrValidation)
	case g.CheckIn.IsZero() || g.CheckOut.IsZero():
		return fmt.Errorf("%w: check-in and check-out dates are required", domain.ErrValidation)
	case pricing.Date(g.CheckOut).Before(pricing.Date(g.CheckIn)):
		return fmt.Errorf("%w: check-out is before check-in", domain.ErrValidation)
	case g.Guests < 1:
		return fmt.Errorf("%w: party size must be at least 1", domain.ErrValidation)
	case g.Guests > room.Capacity:
		return fmt.Errorf("%w: party of %d exceeds room capacity %d", domain.ErrValidation, g.Guests, room.Capacity)
	}
	return nil
}

// checkAvailability rejects a booking that clashes with the room's current
// occupant or with another future reservation for the same room.
//
// Checkout cancels every future reservation still held by the room, so a
// room never carries a current stay and an upcoming booking together: a
// future booking needs a room that is not occupied, and an immediate stay
// needs a room with no upcoming bookings.
func (e *Engine) checkAvailability(room domain.Room, g domain.Guest, immediate bool) error {
	if immediate && room.Status != domain.RoomAvailable {
		return fmt.Errorf("%w: room %s is %s", domain.ErrValidation, room.Number, room.Status)
	}
	if room.Status == domain.RoomOccupied || room.Guest != nil {
		return fmt.Errorf("%w: room %s is occupied; check the guest out before booking it", domain.ErrValidation, room.Number)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, r := range e.future {
		if r.RoomID != room.ID {
			continue
		}
		if immediate {
			return fmt.Errorf("%w: room %s has an upcoming reservation", domain.ErrValidation, room.Number)
		}
		if overlaps(r.Guest, g) {
			return fmt.Errorf("%w: room %s is already reserved for those dates", domain.ErrValidation, room.Number)
		}
	}
	return nil
}

// overlaps reports whether two stays share a night. A same-day stay counts
// as holding that one night.
func overlaps(a, b domain.Guest) bool {
	aIn, aOut := stayNights(a)
	bIn, bOut := stayNights(b)
	return aIn.Before(bOut) && bIn.Before(aOut)
}

func stayNights(g domain.Guest) (in, out time.Time) {
	in, out = pricing.Date(g.CheckIn), pricing.Date(g.CheckOut)
	if !out.After(in) {
		out = in.AddDate(0, 0, 1)
	}
	return in, out
}
