package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/frontdesk/internal/domain"
)

// CheckoutRoom ends the current stay in a room: its history entry is
// completed, the room becomes available, and any future reservation still
// pointing at the room is cancelled.
// Returns domain.ErrNotFound for an unknown room.
func (e *Engine) CheckoutRoom(ctx context.Context, roomID uuid.UUID) error {
	const op = "engine.Engine.CheckoutRoom"
	defer e.begin()()

	room, ok := e.room(roomID)
	if !ok {
		return fmt.Errorf("%s: room %s: %w", op, roomID, domain.ErrNotFound)
	}
	if err := e.store.UpdateRoomStatus(ctx, roomID, domain.RoomAvailable, nil); err != nil {
		return e.writeFailed(ctx, op, err)
	}
	// The stay has ended in the store; finish the cleanup regardless of the caller.
	ctx = context.WithoutCancel(ctx)
	e.completeStay(ctx, room)

	for _, r := range e.FutureReservations() {
		if r.RoomID != roomID {
			continue
		}
		if err := e.store.CancelReservation(ctx, r.ID); err != nil {
			e.log.Warn("cancel reservation on checkout", "reservation_id", r.ID, "error", err)
			continue
		}
		e.markCancelled(ctx, r)
	}

	e.log.Info("room checked out", "room", room.Number)

	// A reservation held back by this stay may be due now.
	if err := e.activate(ctx); err != nil {
		e.log.Warn("activation after checkout failed", "error", err)
	}
	e.settle(ctx)
	return nil
}

// AddExpenseToRoom charges an expense to the room's current guest and
// mirrors it on the stay's history entry.
// Returns domain.ErrValidation when the room has no active guest or the
// expense is invalid.
func (e *Engine) AddExpenseToRoom(ctx context.Context, roomID uuid.UUID, ex domain.Expense) error {
	const op = "engine.Engine.AddExpenseToRoom"
	defer e.begin()()

	room, ok := e.room(roomID)
	if !ok {
		return fmt.Errorf("%s: room %s: %w", op, roomID, domain.ErrNotFound)
	}
	if room.Guest == nil {
		return fmt.Errorf("%s: room %s: %w: no active guest", op, room.Number, domain.ErrValidation)
	}
	ex.Description = strings.TrimSpace(ex.Description)
	if ex.Description == "" {
		return fmt.Errorf("%s: %w: expense description is required", op, domain.ErrValidation)
	}
	if !ex.Value.IsPositive() {
		return fmt.Errorf("%s: %w: expense value must be positive", op, domain.ErrValidation)
	}

	if err := e.store.AddExpense(ctx, room.Guest.ID, ex); err != nil {
		return e.writeFailed(ctx, op, err)
	}
	e.mirrorExpense(ctx, room, ex)
	e.settle(ctx)
	return nil
}

// AddRoom creates a room. A zero status defaults to available.
// Returns domain.ErrValidation for invalid fields or a duplicate number.
func (e *Engine) AddRoom(ctx context.Context, room domain.Room) (uuid.UUID, error) {
	const op = "engine.Engine.AddRoom"
	defer e.begin()()

	if room.Status == "" {
		room.Status = domain.RoomAvailable
	}
	if room.Status == domain.RoomOccupied {
		return uuid.Nil, fmt.Errorf("%s: %w: rooms become occupied only through reservations", op, domain.ErrValidation)
	}
	if err := validateRoom(room); err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	if e.numberTaken(room.Number, uuid.Nil) {
		return uuid.Nil, fmt.Errorf("%s: %w: room number %s already exists", op, domain.ErrValidation, room.Number)
	}

	id, err := e.store.CreateRoom(ctx, room)
	if err != nil {
		return uuid.Nil, e.writeFailed(ctx, op, err)
	}
	e.settle(ctx)
	return id, nil
}

// UpdateRoom applies a partial update to a room's descriptive fields.
func (e *Engine) UpdateRoom(ctx context.Context, id uuid.UUID, patch domain.RoomPatch) error {
	const op = "engine.Engine.UpdateRoom"
	defer e.begin()()

	room, ok := e.room(id)
	if !ok {
		return fmt.Errorf("%s: room %s: %w", op, id, domain.ErrNotFound)
	}
	if patch.Empty() {
		return fmt.Errorf("%s: %w: nothing to update", op, domain.ErrValidation)
	}
	updated := patch.Apply(room)
	if err := validateRoom(updated); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if patch.Number != nil && e.numberTaken(updated.Number, id) {
		return fmt.Errorf("%s: %w: room number %s already exists", op, domain.ErrValidation, updated.Number)
	}

	if err := e.store.UpdateRoom(ctx, id, patch); err != nil {
		return e.writeFailed(ctx, op, err)
	}
	e.settle(ctx)
	return nil
}

// UpdateRoomStatus moves a room between available, reserved, and
// maintenance. Occupancy changes only through reservations and checkout, so
// occupied is neither a valid target nor a valid source.
func (e *Engine) UpdateRoomStatus(ctx context.Context, id uuid.UUID, status domain.RoomStatus) error {
	const op = "engine.Engine.UpdateRoomStatus"
	defer e.begin()()

	room, ok := e.room(id)
	if !ok {
		return fmt.Errorf("%s: room %s: %w", op, id, domain.ErrNotFound)
	}
	switch {
	case !status.Valid():
		return fmt.Errorf("%s: %w: unknown status %q", op, domain.ErrValidation, status)
	case status == domain.RoomOccupied:
		return fmt.Errorf("%s: %w: rooms become occupied only through reservations", op, domain.ErrValidation)
	case room.Status == domain.RoomOccupied:
		return fmt.Errorf("%s: %w: room %s is occupied; check the guest out first", op, domain.ErrValidation, room.Number)
	}

	if err := e.store.UpdateRoomStatus(ctx, id, status, nil); err != nil {
		return e.writeFailed(ctx, op, err)
	}
	e.settle(ctx)
	return nil
}

// DeleteRoom removes a room. The store cascades the deletion to the room's
// reservations. Guest history is left as it is.
func (e *Engine) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	const op = "engine.Engine.DeleteRoom"
	defer e.begin()()

	room, ok := e.room(id)
	if !ok {
		return fmt.Errorf("%s: room %s: %w", op, id, domain.ErrNotFound)
	}
	if err := e.store.DeleteRoom(ctx, id); err != nil {
		return e.writeFailed(ctx, op, err)
	}
	e.log.Info("room deleted", "room", room.Number)
	e.settle(ctx)
	return nil
}

func (e *Engine) numberTaken(number string, except uuid.UUID) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, r := range e.rooms {
		if r.Number == number && r.ID != except {
			return true
		}
	}
	return false
}

func validateRoom(r domain.Room) error {
	switch {
	case strings.TrimSpace(r.Number) == "":
		return fmt.Errorf("%w: room number is required", domain.ErrValidation)
	case strings.TrimSpace(r.Type) == "":
		return fmt.Errorf("%w: room type is required", domain.ErrValidation)
	case r.Capacity < 1:
		return fmt.Errorf("%w: capacity must be at least 1", domain.ErrValidation)
	case r.Beds < 1:
		return fmt.Errorf("%w: beds must be at least 1", domain.ErrValidation)
	case r.Price.IsNegative():
		return fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	case !r.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, r.Status)
	}
	return nil
}
