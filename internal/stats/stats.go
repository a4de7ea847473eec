// Package stats derives hotel statistics from a snapshot of rooms.
package stats

import (
	"github.com/shopspring/decimal"

	"github.com/pkordes/frontdesk/internal/domain"
	"github.com/pkordes/frontdesk/internal/pricing"
)

// Compute builds a Statistics snapshot. futureReservations is the size of
// the future reservation set and is reported as ReservedRooms.
func Compute(rooms []domain.Room, futureReservations int) domain.Statistics {
	s := domain.Statistics{
		TotalRooms:     len(rooms),
		ReservedRooms:  futureReservations,
		RoomsByType:    make(map[string]int),
		MonthlyRevenue: decimal.Zero,
	}

	for _, r := range rooms {
		s.RoomsByType[r.Type]++
		switch r.Status {
		case domain.RoomOccupied:
			s.OccupiedRooms++
		case domain.RoomAvailable:
			s.AvailableRooms++
		case domain.RoomMaintenance:
			s.MaintenanceRooms++
		}
		if r.Status == domain.RoomOccupied && r.Guest != nil {
			s.MonthlyRevenue = s.MonthlyRevenue.Add(pricing.GuestTotal(r.Price, *r.Guest))
			s.ActiveGuests += r.Guest.Guests
		}
	}

	if s.TotalRooms > 0 {
		s.OccupancyRate = float64(s.OccupiedRooms) / float64(s.TotalRooms) * 100
	}
	return s
}
