package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/frontdesk/internal/domain"
	"github.com/pkordes/frontdesk/internal/handler"
)

func TestListRooms_PassesFiltersAndMapsGuest(t *testing.T) {
	var got domain.Filters
	desk := &mockFrontDesk{
		filteredRooms: func(f domain.Filters) []domain.Room {
			got = f
			return []domain.Room{occupiedFixture()}
		},
	}
	h := newHTTPHandler(desk, &mockTrigger{})

	rec := do(t, h, http.MethodGet, "/rooms?type=Casal&status=occupied&min_price=100&max_price=150.5&q=maria", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Casal", got.Type)
	assert.Equal(t, domain.RoomOccupied, got.Status)
	assert.True(t, got.MinPrice.Equal(decimal.NewFromInt(100)))
	assert.True(t, got.MaxPrice.Equal(decimal.RequireFromString("150.5")))
	assert.Equal(t, "maria", got.Search)

	var body []handler.Room
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body, 1)
	require.NotNil(t, body[0].Guest)
	assert.Equal(t, "Maria Silva", body[0].Guest.Name)
	assert.Equal(t, "2026-10-17", body[0].Guest.CheckIn.Format(time.DateOnly))
	assert.Equal(t, stayID, *body[0].StayID)
	require.Len(t, body[0].Guest.Expenses, 1)
	assert.True(t, body[0].Guest.Expenses[0].Value.Equal(decimal.RequireFromString("12.5")))
}

func TestListRooms_EmptyIsArray(t *testing.T) {
	h := newHTTPHandler(&mockFrontDesk{}, &mockTrigger{})

	rec := do(t, h, http.MethodGet, "/rooms", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListRooms_InvalidFilters(t *testing.T) {
	h := newHTTPHandler(&mockFrontDesk{}, &mockTrigger{})

	for _, q := range []string{"status=dirty", "min_price=abc", "max_price=-5"} {
		t.Run(q, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, "/rooms?"+q, "", nil)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		})
	}
}

func TestCreateRoom_Returns201WithRoom(t *testing.T) {
	var added domain.Room
	desk := &mockFrontDesk{
		addRoom: func(_ context.Context, r domain.Room) (uuid.UUID, error) {
			added = r
			return roomID, nil
		},
		filteredRooms: func(domain.Filters) []domain.Room { return []domain.Room{roomFixture()} },
	}
	h := newHTTPHandler(desk, &mockTrigger{})

	rec := do(t, h, http.MethodPost, "/rooms", "admin",
		`{"number":"101","type":"Casal","capacity":2,"beds":1,"price":"120","amenities":["Wi-Fi"]}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "101", added.Number)
	assert.True(t, added.Price.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, domain.RoomStatus(""), added.Status)

	var body handler.Room
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, roomID, body.ID)
	assert.Equal(t, "available", body.Status)
}

func TestCreateRoom_RequestValidation(t *testing.T) {
	h := newHTTPHandler(&mockFrontDesk{}, &mockTrigger{})

	tests := []struct {
		name, body, wantMsg string
		wantCode            int
	}{
		{"missing number", `{"type":"Casal","capacity":2,"beds":1,"price":120}`, "number is required", http.StatusUnprocessableEntity},
		{"zero capacity", `{"number":"1","type":"Casal","capacity":0,"beds":1,"price":120}`, "capacity must be gte 1", http.StatusUnprocessableEntity},
		{"occupied status", `{"number":"1","type":"Casal","capacity":1,"beds":1,"price":1,"status":"occupied"}`, "status must be one of", http.StatusUnprocessableEntity},
		{"wrong type", `{"number":101}`, "", http.StatusUnprocessableEntity},
		{"unknown field", `{"number":"1","floor":3}`, "", http.StatusBadRequest},
		{"malformed", `{"number":`, "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/rooms", "admin", tt.body)

			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantMsg != "" {
				assert.Contains(t, decodeError(t, rec).Error.Message, tt.wantMsg)
			}
		})
	}
}

func TestCreateRoom_DuplicateNumberIs422(t *testing.T) {
	desk := &mockFrontDesk{
		addRoom: func(context.Context, domain.Room) (uuid.UUID, error) {
			return uuid.Nil, fmt.Errorf("engine.Engine.AddRoom: %w: room number 101 already exists", domain.ErrValidation)
		},
	}
	h := newHTTPHandler(desk, &mockTrigger{})

	rec := do(t, h, http.MethodPost, "/rooms", "admin",
		`{"number":"101","type":"Casal","capacity":2,"beds":1,"price":120}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "validation_error", body.Error.Code)
	assert.Equal(t, "room number 101 already exists", body.Error.Message)
}

func TestUpdateRoom_PartialPatch(t *testing.T) {
	var gotID uuid.UUID
	var patch domain.RoomPatch
	desk := &mockFrontDesk{
		updateRoom: func(_ context.Context, id uuid.UUID, p domain.RoomPatch) error {
			gotID, patch = id, p
			return nil
		},
	}
	h := newHTTPHandler(desk, &mockTrigger{})

	rec := do(t, h, http.MethodPut, "/rooms/"+roomID.String(), "admin", `{"price":"135.00"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, roomID, gotID)
	require.NotNil(t, patch.Price)
	assert.True(t, patch.Price.Equal(decimal.NewFromInt(135)))
	assert.Nil(t, patch.Number)
	assert.Nil(t, patch.Amenities)
}

func TestUpdateRoom_NotFound(t *testing.T) {
	desk := &mockFrontDesk{
		updateRoom: func(context.Context, uuid.UUID, domain.RoomPatch) error {
			return fmt.Errorf("engine.Engine.UpdateRoom: room x: %w", domain.ErrNotFound)
		},
	}
	h := newHTTPHandler(desk, &mockTrigger{})

	rec := do(t, h, http.MethodPut, "/rooms/"+roomID.String(), "admin", `{"type":"Suite"}`)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, handler.ErrorResponse{Error: handler.ErrorDetail{Code: "not_found", Message: "room not found"}}, decodeError(t, rec))
}

func TestUpdateRoomStatus(t *testing.T) {
	var got domain.RoomStatus
	desk := &mockFrontDesk{
		updateStatus: func(_ context.Context, _ uuid.UUID, st domain.RoomStatus) error {
			got = st
			return nil
		},
	}
	h := newHTTPHandler(desk, &mockTrigger{})

	rec := do(t, h, http.MethodPut, "/rooms/"+roomID.String()+"/status", "staff", `{"status":"maintenance"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.RoomMaintenance, got)

	rec = do(t, h, http.MethodPut, "/rooms/"+roomID.String()+"/status", "staff", `{"status":"dirty"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDeleteRoom(t *testing.T) {
	var deleted uuid.UUID
	desk := &mockFrontDesk{
		deleteRoom: func(_ context.Context, id uuid.UUID) error {
			deleted = id
			return nil
		},
	}
	h := newHTTPHandler(desk, &mockTrigger{})

	rec := do(t, h, http.MethodDelete, "/rooms/"+roomID.String(), "admin", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, roomID, deleted)
}

func TestCheckoutRoom_StoreFailureIs503(t *testing.T) {
	desk := &mockFrontDesk{
		checkoutRoom: func(context.Context, uuid.UUID) error {
			return fmt.Errorf("engine.Engine.CheckoutRoom: %w: connection reset", domain.ErrTransaction)
		},
	}
	h := newHTTPHandler(desk, &mockTrigger{})

	rec := do(t, h, http.MethodPost, "/rooms/"+roomID.String()+"/checkout", "staff", nil)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "store_unavailable", body.Error.Code)
	assert.Equal(t, domain.ErrTransaction.Error(), body.Error.Message)
}

func TestCheckoutRoom_ReturnsFreedRoom(t *testing.T) {
	desk := &mockFrontDesk{
		checkoutRoom:  func(context.Context, uuid.UUID) error { return nil },
		filteredRooms: func(domain.Filters) []domain.Room { return []domain.Room{roomFixture()} },
	}
	h := newHTTPHandler(desk, &mockTrigger{})

	rec := do(t, h, http.MethodPost, "/rooms/"+roomID.String()+"/checkout", "admin", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.Room
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "available", body.Status)
	assert.Nil(t, body.Guest)
}

func TestAddExpense(t *testing.T) {
	var got domain.Expense
	desk := &mockFrontDesk{
		addExpense: func(_ context.Context, _ uuid.UUID, ex domain.Expense) error {
			got = ex
			return nil
		},
		filteredRooms: func(domain.Filters) []domain.Room { return []domain.Room{occupiedFixture()} },
	}
	h := newHTTPHandler(desk, &mockTrigger{})

	rec := do(t, h, http.MethodPost, "/rooms/"+roomID.String()+"/expenses", "staff",
		`{"description":"Frigobar","value":12.5}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Frigobar", got.Description)
	assert.True(t, got.Value.Equal(decimal.RequireFromString("12.5")))
}

func TestAddExpense_NoActiveGuest(t *testing.T) {
	desk := &mockFrontDesk{
		addExpense: func(context.Context, uuid.UUID, domain.Expense) error {
			return fmt.Errorf("engine.Engine.AddExpenseToRoom: room 101: %w: no active guest", domain.ErrValidation)
		},
	}
	h := newHTTPHandler(desk, &mockTrigger{})

	rec := do(t, h, http.MethodPost, "/rooms/"+roomID.String()+"/expenses", "staff",
		`{"description":"Frigobar","value":"10"}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "no active guest", decodeError(t, rec).Error.Message)
}
