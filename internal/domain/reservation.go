package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus is the store-side lifecycle of a reservation row.
type ReservationStatus string

const (
	ReservationFuture    ReservationStatus = "future"
	ReservationActive    ReservationStatus = "active"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
)

// Reservation is a booking recorded ahead of its check-in date. RoomID is a
// reference, not ownership: deleting the room cascades to its reservations.
type Reservation struct {
	ID        uuid.UUID         `json:"id"`
	RoomID    uuid.UUID         `json:"room_id"`
	Guest     Guest             `json:"guest"`
	Status    ReservationStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}
