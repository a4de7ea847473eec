package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HistoryStatus is the lifecycle of a guest history entry.
type HistoryStatus string

const (
	HistoryActive    HistoryStatus = "active"
	HistoryCompleted HistoryStatus = "completed"
	HistoryCancelled HistoryStatus = "cancelled"
)

// HistoryEntry is an append-only record of one booking. Only Status,
// TotalPrice, and the guest's expense list change after creation.
// StayID is the reservation id of the booking; entries restored from older
// backups may have a nil StayID and are then matched by room and guest name.
type HistoryEntry struct {
	ID           uuid.UUID       `json:"id"`
	StayID       *uuid.UUID      `json:"stay_id,omitempty"`
	Guest        Guest           `json:"guest"`
	RoomNumber   string          `json:"room_number"`
	RoomType     string          `json:"room_type"`
	CheckInDate  time.Time       `json:"check_in_date"`
	CheckOutDate time.Time       `json:"check_out_date"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	Status       HistoryStatus   `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

// IsStay reports whether the entry belongs to the stay with the given id.
func (h HistoryEntry) IsStay(id uuid.UUID) bool {
	return h.StayID != nil && *h.StayID == id
}
