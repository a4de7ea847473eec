package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/frontdesk/internal/domain"
	"github.com/pkordes/frontdesk/internal/pricing"
)

// DeleteHistoryEntry removes one entry from the guest history.
// Returns domain.ErrNotFound if no entry has that id.
func (e *Engine) DeleteHistoryEntry(ctx context.Context, id uuid.UUID) error {
	defer e.begin()()

	e.mu.Lock()
	idx := -1
	for i, h := range e.history {
		if h.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		e.mu.Unlock()
		return fmt.Errorf("engine.Engine.DeleteHistoryEntry: entry %s: %w", id, domain.ErrNotFound)
	}
	e.history = append(e.history[:idx:idx], e.history[idx+1:]...)
	e.mu.Unlock()

	e.persistHistory(ctx)
	return nil
}

func (e *Engine) newHistoryEntry(room domain.Room, stayID uuid.UUID, g domain.Guest) domain.HistoryEntry {
	g = g.WithoutExpenses()
	return domain.HistoryEntry{
		ID:           uuid.New(),
		StayID:       &stayID,
		Guest:        g,
		RoomNumber:   room.Number,
		RoomType:     room.Type,
		CheckInDate:  pricing.Date(g.CheckIn),
		CheckOutDate: pricing.Date(g.CheckOut),
		TotalPrice:   pricing.GuestTotal(room.Price, g),
		Status:       domain.HistoryActive,
		CreatedAt:    e.now(),
	}
}

// hasHistoryFor reports whether the stay already has an entry in any status.
// Legacy entries without a stay id match on room number and guest name while
// active. e.mu must be held.
func (e *Engine) hasHistoryFor(stayID uuid.UUID, roomNumber, name string) bool {
	for _, h := range e.history {
		if h.IsStay(stayID) {
			return true
		}
		if h.StayID == nil && h.Status == domain.HistoryActive &&
			h.RoomNumber == roomNumber && h.Guest.Name == name {
			return true
		}
	}
	return false
}

// activeEntry returns the index of the active history entry of the stay
// currently occupying room, or -1. e.mu must be held.
func (e *Engine) activeEntry(room domain.Room) int {
	if room.Guest == nil {
		return -1
	}
	if room.StayID != nil {
		for i, h := range e.history {
			if h.IsStay(*room.StayID) && h.Status == domain.HistoryActive {
				return i
			}
		}
	}
	for i, h := range e.history {
		if h.StayID == nil && h.Status == domain.HistoryActive &&
			h.RoomNumber == room.Number && h.Guest.Name == room.Guest.Name {
			return i
		}
	}
	return -1
}

// completeStay marks the history entry of the room's current stay completed.
func (e *Engine) completeStay(ctx context.Context, room domain.Room) {
	e.mu.Lock()
	idx := e.activeEntry(room)
	if idx >= 0 {
		e.history[idx].Status = domain.HistoryCompleted
	}
	e.mu.Unlock()
	if idx >= 0 {
		e.persistHistory(ctx)
	}
}

// mirrorExpense appends the expense to the active history entry of the
// room's stay and raises its total by the expense value.
func (e *Engine) mirrorExpense(ctx context.Context, room domain.Room, ex domain.Expense) {
	e.mu.Lock()
	idx := e.activeEntry(room)
	if idx >= 0 {
		h := &e.history[idx]
		h.Guest = h.Guest.WithExpense(ex)
		h.TotalPrice = h.TotalPrice.Add(ex.Value)
	}
	e.mu.Unlock()
	if idx >= 0 {
		e.persistHistory(ctx)
	}
}

// markCancelled flips the active history entry of a future reservation to
// cancelled. Legacy entries match on guest name and check-in date.
func (e *Engine) markCancelled(ctx context.Context, res domain.Reservation) {
	checkIn := pricing.Date(res.Guest.CheckIn)

	e.mu.Lock()
	idx := -1
	for i, h := range e.history {
		if h.IsStay(res.ID) && h.Status == domain.HistoryActive {
			idx = i
			break
		}
	}
	if idx < 0 {
		for i, h := range e.history {
			if h.StayID == nil && h.Status == domain.HistoryActive &&
				h.Guest.Name == res.Guest.Name && pricing.Date(h.CheckInDate).Equal(checkIn) {
				idx = i
				break
			}
		}
	}
	if idx >= 0 {
		e.history[idx].Status = domain.HistoryCancelled
	}
	e.mu.Unlock()
	if idx >= 0 {
		e.persistHistory(ctx)
	}
}
