// Package domain contains the core data types for the front desk service.
// It is imported by every other internal package (repo, engine, handler) and
// depends only on uuid, decimal, and x/text.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RoomStatus is the occupancy state of a room.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomOccupied    RoomStatus = "occupied"
	RoomReserved    RoomStatus = "reserved"
	RoomMaintenance RoomStatus = "maintenance"
)

// Valid reports whether s is one of the known room statuses.
func (s RoomStatus) Valid() bool {
	switch s {
	case RoomAvailable, RoomOccupied, RoomReserved, RoomMaintenance:
		return true
	}
	return false
}

// Room is a bookable unit. Guest is non-nil only while the room is occupied,
// and StayID then points at the active reservation backing the occupancy.
type Room struct {
	ID        uuid.UUID       `json:"id"`
	Number    string          `json:"number"`
	Type      string          `json:"type"`
	Capacity  int             `json:"capacity"`
	Beds      int             `json:"beds"`
	Price     decimal.Decimal `json:"price"`
	Amenities []string        `json:"amenities"`
	Status    RoomStatus      `json:"status"`
	Guest     *Guest          `json:"guest,omitempty"`
	StayID    *uuid.UUID      `json:"stay_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// RoomPatch carries a partial room update. Nil fields are left unchanged.
// Status and occupancy are not patchable here; they change through
// reservations, checkout, or an explicit status update.
type RoomPatch struct {
	Number    *string
	Type      *string
	Capacity  *int
	Beds      *int
	Price     *decimal.Decimal
	Amenities *[]string
}

// Apply returns a copy of r with the non-nil fields of p applied.
func (p RoomPatch) Apply(r Room) Room {
	if p.Number != nil {
		r.Number = *p.Number
	}
	if p.Type != nil {
		r.Type = *p.Type
	}
	if p.Capacity != nil {
		r.Capacity = *p.Capacity
	}
	if p.Beds != nil {
		r.Beds = *p.Beds
	}
	if p.Price != nil {
		r.Price = *p.Price
	}
	if p.Amenities != nil {
		r.Amenities = append([]string(nil), (*p.Amenities)...)
	}
	return r
}

// Empty reports whether the patch changes nothing.
func (p RoomPatch) Empty() bool {
	return p.Number == nil && p.Type == nil && p.Capacity == nil &&
		p.Beds == nil && p.Price == nil && p.Amenities == nil
}
