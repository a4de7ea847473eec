package stats_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/pkordes/frontdesk/internal/domain"
	"github.com/pkordes/frontdesk/internal/stats"
)

func TestCompute_NoRooms(t *testing.T) {
	s := stats.Compute(nil, 0)

	assert.Equal(t, 0, s.TotalRooms)
	assert.Zero(t, s.OccupancyRate)
	assert.True(t, s.MonthlyRevenue.IsZero())
	assert.NotNil(t, s.RoomsByType)
}

func TestCompute_Snapshot(t *testing.T) {
	checkIn := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rooms := []domain.Room{
		{
			Type: "Casal", Price: decimal.NewFromInt(120), Status: domain.RoomOccupied,
			Guest: &domain.Guest{
				CheckIn: checkIn, CheckOut: checkIn.AddDate(0, 0, 2), Guests: 2,
				Expenses: []domain.Expense{{Description: "minibar", Value: decimal.NewFromInt(30)}},
			},
		},
		{Type: "Casal", Price: decimal.NewFromInt(120), Status: domain.RoomAvailable},
		{Type: "Solteiro", Price: decimal.NewFromInt(100), Status: domain.RoomMaintenance},
		// Occupied without a guest contributes to occupancy but not to revenue.
		{Type: "Triplo", Price: decimal.NewFromInt(100), Status: domain.RoomOccupied},
	}

	s := stats.Compute(rooms, 3)

	assert.Equal(t, 4, s.TotalRooms)
	assert.Equal(t, 2, s.OccupiedRooms)
	assert.Equal(t, 1, s.AvailableRooms)
	assert.Equal(t, 1, s.MaintenanceRooms)
	assert.Equal(t, 3, s.ReservedRooms)
	assert.InDelta(t, 50.0, s.OccupancyRate, 1e-9)
	assert.Equal(t, map[string]int{"Casal": 2, "Solteiro": 1, "Triplo": 1}, s.RoomsByType)
	assert.Equal(t, "510", s.MonthlyRevenue.String())
	assert.Equal(t, 2, s.ActiveGuests)
}

func TestCompute_OccupancyRateMatchesDefinition(t *testing.T) {
	for occupied := 0; occupied <= 3; occupied++ {
		rooms := make([]domain.Room, 3)
		for i := range rooms {
			rooms[i].Status = domain.RoomAvailable
			if i < occupied {
				rooms[i].Status = domain.RoomOccupied
			}
		}
		s := stats.Compute(rooms, 0)
		assert.InDelta(t, float64(occupied)/3*100, s.OccupancyRate, 1e-9)
	}
}
