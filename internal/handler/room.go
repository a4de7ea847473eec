package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pkordes/frontdesk/internal/domain"
)

// ListRooms handles GET /rooms.
// Supports ?type=, ?status=, ?min_price=, ?max_price= and ?q= filters.
func (s *Server) ListRooms(w http.ResponseWriter, r *http.Request) {
	f, err := filtersFromQuery(r)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, roomsToResponse(s.desk.FilteredRooms(f)))
}

// CreateRoom handles POST /rooms.
func (s *Server) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if !s.decode(w, r, &req) {
		return
	}

	id, err := s.desk.AddRoom(r.Context(), req.toDomain())
	if err != nil {
		s.writeDomainError(w, r, "room", err)
		return
	}
	s.writeRoom(w, http.StatusCreated, id)
}

// UpdateRoom handles PUT /rooms/{id}.
func (s *Server) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req UpdateRoomRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.desk.UpdateRoom(r.Context(), id, req.toDomain()); err != nil {
		s.writeDomainError(w, r, "room", err)
		return
	}
	s.writeRoom(w, http.StatusOK, id)
}

// UpdateRoomStatus handles PUT /rooms/{id}/status.
func (s *Server) UpdateRoomStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req RoomStatusRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.desk.UpdateRoomStatus(r.Context(), id, domain.RoomStatus(req.Status)); err != nil {
		s.writeDomainError(w, r, "room", err)
		return
	}
	s.writeRoom(w, http.StatusOK, id)
}

// DeleteRoom handles DELETE /rooms/{id}.
func (s *Server) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.desk.DeleteRoom(r.Context(), id); err != nil {
		s.writeDomainError(w, r, "room", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CheckoutRoom handles POST /rooms/{id}/checkout.
func (s *Server) CheckoutRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.desk.CheckoutRoom(r.Context(), id); err != nil {
		s.writeDomainError(w, r, "room", err)
		return
	}
	s.writeRoom(w, http.StatusOK, id)
}

// AddExpense handles POST /rooms/{id}/expenses.
func (s *Server) AddExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req ExpenseRequest
	if !s.decode(w, r, &req) {
		return
	}

	ex := domain.Expense{Description: req.Description, Value: req.Value}
	if err := s.desk.AddExpenseToRoom(r.Context(), id, ex); err != nil {
		s.writeDomainError(w, r, "room", err)
		return
	}
	s.writeRoom(w, http.StatusCreated, id)
}

// writeRoom responds with the room's post-command state. A command can
// succeed while the follow-up resync fails; the room is then not in the
// local snapshot and only its id is returned.
func (s *Server) writeRoom(w http.ResponseWriter, status int, id uuid.UUID) {
	for _, room := range s.desk.FilteredRooms(domain.Filters{}) {
		if room.ID == id {
			writeJSON(w, status, roomToResponse(room))
			return
		}
	}
	writeJSON(w, status, map[string]uuid.UUID{"id": id})
}

// filtersFromQuery builds domain.Filters from the query string.
func filtersFromQuery(r *http.Request) (domain.Filters, error) {
	q := r.URL.Query()
	f := domain.Filters{
		Type:   q.Get("type"),
		Status: domain.RoomStatus(q.Get("status")),
		Search: q.Get("q"),
	}
	if f.Status != "" && !f.Status.Valid() {
		return domain.Filters{}, errInvalidQuery("status", string(f.Status))
	}
	var err error
	if f.MinPrice, err = priceParam(q.Get("min_price"), "min_price"); err != nil {
		return domain.Filters{}, err
	}
	if f.MaxPrice, err = priceParam(q.Get("max_price"), "max_price"); err != nil {
		return domain.Filters{}, err
	}
	return f, nil
}

func priceParam(raw, name string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return decimal.Zero, errInvalidQuery(name, raw)
	}
	return d, nil
}
