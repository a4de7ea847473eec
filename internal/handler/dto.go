package handler

import (
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"

	"github.com/pkordes/frontdesk/internal/domain"
	"github.com/pkordes/frontdesk/internal/engine"
)

// --- requests ---------------------------------------------------------------

// CreateRoomRequest is the body of POST /rooms.
type CreateRoomRequest struct {
	Number    string          `json:"number" validate:"required"`
	Type      string          `json:"type" validate:"required"`
	Capacity  int             `json:"capacity" validate:"gte=1"`
	Beds      int             `json:"beds" validate:"gte=1"`
	Price     decimal.Decimal `json:"price"`
	Amenities []string        `json:"amenities" validate:"dive,required"`
	Status    string          `json:"status" validate:"omitempty,oneof=available reserved maintenance"`
}

// UpdateRoomRequest is the body of PUT /rooms/{id}. Absent fields are left
// unchanged.
type UpdateRoomRequest struct {
	Number    *string          `json:"number" validate:"omitempty,min=1"`
	Type      *string          `json:"type" validate:"omitempty,min=1"`
	Capacity  *int             `json:"capacity" validate:"omitempty,gte=1"`
	Beds      *int             `json:"beds" validate:"omitempty,gte=1"`
	Price     *decimal.Decimal `json:"price"`
	Amenities *[]string        `json:"amenities"`
}

// RoomStatusRequest is the body of PUT /rooms/{id}/status.
type RoomStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available occupied reserved maintenance"`
}

// ExpenseRequest is the body of POST /rooms/{id}/expenses.
type ExpenseRequest struct {
	Description string          `json:"description" validate:"required"`
	Value       decimal.Decimal `json:"value"`
}

// GuestRequest is the guest part of a reservation.
type GuestRequest struct {
	Name     string             `json:"name" validate:"required"`
	Email    string             `json:"email" validate:"omitempty,email"`
	Phone    string             `json:"phone"`
	CPF      string             `json:"cpf"`
	CheckIn  openapi_types.Date `json:"check_in"`
	CheckOut openapi_types.Date `json:"check_out"`
	Guests   int                `json:"guests" validate:"gte=1"`
}

// CreateReservationRequest is the body of POST /reservations.
type CreateReservationRequest struct {
	RoomID uuid.UUID    `json:"room_id" validate:"required"`
	Guest  GuestRequest `json:"guest"`
}

// SyncEventRequest is the body of POST /sync/events.
type SyncEventRequest struct {
	Event   string `json:"event" validate:"required,oneof=focus visibility"`
	Visible *bool  `json:"visible" validate:"required_if=Event visibility"`
}

// --- responses --------------------------------------------------------------

// Expense is the JSON form of domain.Expense.
type Expense struct {
	Description string          `json:"description"`
	Value       decimal.Decimal `json:"value"`
}

// Guest is the JSON form of domain.Guest. Dates carry no time of day.
type Guest struct {
	ID       *uuid.UUID         `json:"id,omitempty"`
	Name     string             `json:"name"`
	Email    string             `json:"email,omitempty"`
	Phone    string             `json:"phone,omitempty"`
	CPF      string             `json:"cpf,omitempty"`
	CheckIn  openapi_types.Date `json:"check_in"`
	CheckOut openapi_types.Date `json:"check_out"`
	Guests   int                `json:"guests"`
	Expenses []Expense          `json:"expenses"`
}

// Room is the JSON form of domain.Room.
type Room struct {
	ID        uuid.UUID       `json:"id"`
	Number    string          `json:"number"`
	Type      string          `json:"type"`
	Capacity  int             `json:"capacity"`
	Beds      int             `json:"beds"`
	Price     decimal.Decimal `json:"price"`
	Amenities []string        `json:"amenities"`
	Status    string          `json:"status"`
	Guest     *Guest          `json:"guest,omitempty"`
	StayID    *uuid.UUID      `json:"stay_id,omitempty"`
}

// Reservation is the JSON form of domain.Reservation.
type Reservation struct {
	ID        uuid.UUID `json:"id"`
	RoomID    uuid.UUID `json:"room_id"`
	Guest     Guest     `json:"guest"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryEntry is the JSON form of domain.HistoryEntry.
type HistoryEntry struct {
	ID           uuid.UUID          `json:"id"`
	StayID       *uuid.UUID         `json:"stay_id,omitempty"`
	Guest        Guest              `json:"guest"`
	RoomNumber   string             `json:"room_number"`
	RoomType     string             `json:"room_type"`
	CheckInDate  openapi_types.Date `json:"check_in_date"`
	CheckOutDate openapi_types.Date `json:"check_out_date"`
	TotalPrice   decimal.Decimal    `json:"total_price"`
	Status       string             `json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
}

// Pagination describes one page of a list.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// HistoryPage is the body of GET /history.
type HistoryPage struct {
	Data       []HistoryEntry `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

// SyncStatus is the body of GET /sync/status.
type SyncStatus struct {
	Loading  bool       `json:"loading"`
	Online   bool       `json:"online"`
	LastSync *time.Time `json:"last_sync,omitempty"`
	Error    string     `json:"error,omitempty"`
	Warning  string     `json:"warning,omitempty"`
	Pending  int        `json:"pending"`
}

// --- mapping helpers --------------------------------------------------------

func (req CreateRoomRequest) toDomain() domain.Room {
	return domain.Room{
		Number:    req.Number,
		Type:      req.Type,
		Capacity:  req.Capacity,
		Beds:      req.Beds,
		Price:     req.Price,
		Amenities: nonNil(req.Amenities),
		Status:    domain.RoomStatus(req.Status),
	}
}

func (req UpdateRoomRequest) toDomain() domain.RoomPatch {
	return domain.RoomPatch{
		Number:    req.Number,
		Type:      req.Type,
		Capacity:  req.Capacity,
		Beds:      req.Beds,
		Price:     req.Price,
		Amenities: req.Amenities,
	}
}

func (req GuestRequest) toDomain() domain.Guest {
	return domain.Guest{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		CPF:      req.CPF,
		CheckIn:  req.CheckIn.Time,
		CheckOut: req.CheckOut.Time,
		Guests:   req.Guests,
		Expenses: []domain.Expense{},
	}
}

func guestToResponse(g domain.Guest) Guest {
	out := Guest{
		Name:     g.Name,
		Email:    g.Email,
		Phone:    g.Phone,
		CPF:      g.CPF,
		CheckIn:  openapi_types.Date{Time: g.CheckIn},
		CheckOut: openapi_types.Date{Time: g.CheckOut},
		Guests:   g.Guests,
		Expenses: make([]Expense, 0, len(g.Expenses)),
	}
	if g.ID != uuid.Nil {
		id := g.ID
		out.ID = &id
	}
	for _, e := range g.Expenses {
		out.Expenses = append(out.Expenses, Expense{Description: e.Description, Value: e.Value})
	}
	return out
}

func roomToResponse(r domain.Room) Room {
	out := Room{
		ID:        r.ID,
		Number:    r.Number,
		Type:      r.Type,
		Capacity:  r.Capacity,
		Beds:      r.Beds,
		Price:     r.Price,
		Amenities: nonNil(r.Amenities),
		Status:    string(r.Status),
		StayID:    r.StayID,
	}
	if r.Guest != nil {
		g := guestToResponse(*r.Guest)
		out.Guest = &g
	}
	return out
}

func roomsToResponse(rooms []domain.Room) []Room {
	out := make([]Room, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, roomToResponse(r))
	}
	return out
}

func reservationToResponse(r domain.Reservation) Reservation {
	return Reservation{
		ID:        r.ID,
		RoomID:    r.RoomID,
		Guest:     guestToResponse(r.Guest),
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
	}
}

func historyToResponse(h domain.HistoryEntry) HistoryEntry {
	return HistoryEntry{
		ID:           h.ID,
		StayID:       h.StayID,
		Guest:        guestToResponse(h.Guest),
		RoomNumber:   h.RoomNumber,
		RoomType:     h.RoomType,
		CheckInDate:  openapi_types.Date{Time: h.CheckInDate},
		CheckOutDate: openapi_types.Date{Time: h.CheckOutDate},
		TotalPrice:   h.TotalPrice,
		Status:       string(h.Status),
		CreatedAt:    h.CreatedAt,
	}
}

func statusToResponse(st engine.Status) SyncStatus {
	out := SyncStatus{
		Loading: st.Loading,
		Online:  st.Online,
		Warning: st.Warning,
		Pending: st.Pending,
	}
	if !st.LastSync.IsZero() {
		t := st.LastSync
		out.LastSync = &t
	}
	if st.Err != nil {
		out.Error = unwrapMessage(st.Err)
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
