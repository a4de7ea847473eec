package handler

import (
	"net/http"
)

// CreateReservation handles POST /reservations.
// A check-in of today or earlier occupies the room at once; a later
// check-in records a future reservation.
func (s *Server) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.desk.MakeReservation(r.Context(), req.RoomID, req.Guest.toDomain())
	if err != nil {
		s.writeDomainError(w, r, "room", err)
		return
	}
	writeJSON(w, http.StatusCreated, reservationToResponse(res))
}

// ListFutureReservations handles GET /reservations/future.
// Each entry is the reserved room carrying the future guest.
func (s *Server) ListFutureReservations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, roomsToResponse(s.desk.FutureReservationViews()))
}

// CancelReservation handles DELETE /reservations/{id}.
func (s *Server) CancelReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.desk.CancelFutureReservation(r.Context(), id); err != nil {
		s.writeDomainError(w, r, "reservation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
