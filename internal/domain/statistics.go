package domain

import "github.com/shopspring/decimal"

// Statistics is a derived snapshot of the hotel. It is never stored.
// OccupancyRate is a percentage in [0, 100] and is 0 when there are no rooms.
// ReservedRooms counts future reservations, not rooms in the reserved status.
type Statistics struct {
	TotalRooms       int             `json:"total_rooms"`
	OccupiedRooms    int             `json:"occupied_rooms"`
	AvailableRooms   int             `json:"available_rooms"`
	ReservedRooms    int             `json:"reserved_rooms"`
	MaintenanceRooms int             `json:"maintenance_rooms"`
	OccupancyRate    float64         `json:"occupancy_rate"`
	RoomsByType      map[string]int  `json:"rooms_by_type"`
	MonthlyRevenue   decimal.Decimal `json:"monthly_revenue"`
	ActiveGuests     int             `json:"active_guests"`
}
