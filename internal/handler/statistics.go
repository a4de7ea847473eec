package handler

import "net/http"

// GetStatistics handles GET /statistics.
func (s *Server) GetStatistics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.desk.Statistics())
}
