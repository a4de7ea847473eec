package handler

import "net/http"

// GetSyncStatus handles GET /sync/status.
func (s *Server) GetSyncStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusToResponse(s.desk.Status()))
}

// PostSyncEvent handles POST /sync/events. Clients report focus and
// visibility changes; each may request an immediate sync. The sync itself
// runs in the background, so the response is 202.
func (s *Server) PostSyncEvent(w http.ResponseWriter, r *http.Request) {
	var req SyncEventRequest
	if !s.decode(w, r, &req) {
		return
	}

	switch req.Event {
	case "focus":
		s.triggers.Focus()
	case "visibility":
		s.triggers.SetVisible(*req.Visible)
	}
	w.WriteHeader(http.StatusAccepted)
}
