package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/frontdesk/internal/domain"
)

// csvHeaders defines the column names written as the first row of a CSV export.
var csvHeaders = []string{
	"entry_id", "stay_id", "guest_name", "guest_email", "guest_phone", "guest_cpf",
	"guests", "room_number", "room_type", "check_in_date", "check_out_date",
	"expenses", "total_price", "status", "created_at",
}

// ListHistory handles GET /history.
// Supports ?page= and ?limit= (defaults: page=1, limit=20, max=100) and
// ?status=. Use ?format=csv to export every matching entry as CSV instead.
func (s *Server) ListHistory(w http.ResponseWriter, r *http.Request) {
	page, err := intParam(r, "page")
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(err.Error()))
		return
	}
	limit, err := intParam(r, "limit")
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(err.Error()))
		return
	}
	status := domain.HistoryStatus(r.URL.Query().Get("status"))
	switch status {
	case "", domain.HistoryActive, domain.HistoryCompleted, domain.HistoryCancelled:
	default:
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(errInvalidQuery("status", string(status)).Error()))
		return
	}

	entries := s.desk.GuestHistory()
	if status != "" {
		kept := entries[:0]
		for _, h := range entries {
			if h.Status == status {
				kept = append(kept, h)
			}
		}
		entries = kept
	}

	switch format := r.URL.Query().Get("format"); format {
	case "csv":
		writeCSV(w, entries)
		return
	case "", "json":
	default:
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(errInvalidQuery("format", format).Error()))
		return
	}

	params := domain.NewPaginationParams(page, limit)
	pageItems, total := domain.Paginate(entries, params)
	data := make([]HistoryEntry, len(pageItems))
	for i, h := range pageItems {
		data[i] = historyToResponse(h)
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	writeJSON(w, http.StatusOK, HistoryPage{
		Data: data,
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// DeleteHistory handles DELETE /history/{id}.
func (s *Server) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.desk.DeleteHistoryEntry(r.Context(), id); err != nil {
		s.writeDomainError(w, r, "history entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeCSV encodes entries as CSV. Expenses within a row are
// pipe-separated ("|") to keep each booking on a single line.
func writeCSV(w http.ResponseWriter, entries []domain.HistoryEntry) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, h := range entries {
		//nolint:errcheck
		cw.Write(historyToCSVRecord(h))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="guest-history.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// historyToCSVRecord flattens an entry. Expenses are written as
// "description:value" pairs.
func historyToCSVRecord(h domain.HistoryEntry) []string {
	stayID := ""
	if h.StayID != nil {
		stayID = h.StayID.String()
	}
	expenses := make([]string, 0, len(h.Guest.Expenses))
	for _, e := range h.Guest.Expenses {
		expenses = append(expenses, e.Description+":"+e.Value.StringFixed(2))
	}
	return []string{
		h.ID.String(),
		stayID,
		h.Guest.Name,
		h.Guest.Email,
		h.Guest.Phone,
		h.Guest.CPF,
		strconv.Itoa(h.Guest.Guests),
		h.RoomNumber,
		h.RoomType,
		h.CheckInDate.Format(time.DateOnly),
		h.CheckOutDate.Format(time.DateOnly),
		strings.Join(expenses, "|"),
		h.TotalPrice.StringFixed(2),
		string(h.Status),
		h.CreatedAt.UTC().Format(time.RFC3339),
	}
}
