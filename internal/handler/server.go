// Package handler implements the HTTP surface of the front desk service.
// All handlers are methods on Server. They are split into files per
// resource (room.go, reservation.go, history.go, ...) and share the
// dependencies held by Server.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pkordes/frontdesk/internal/domain"
	"github.com/pkordes/frontdesk/internal/engine"
	"github.com/pkordes/frontdesk/internal/middleware"
)

// FrontDesk is the set of engine operations the handlers depend on.
// Defining the interface here lets handler tests inject a mock without a
// database, a cache, or a running scheduler.
type FrontDesk interface {
	FilteredRooms(f domain.Filters) []domain.Room
	FutureReservationViews() []domain.Room
	GuestHistory() []domain.HistoryEntry
	Statistics() domain.Statistics
	Status() engine.Status

	AddRoom(ctx context.Context, room domain.Room) (uuid.UUID, error)
	UpdateRoom(ctx context.Context, id uuid.UUID, patch domain.RoomPatch) error
	UpdateRoomStatus(ctx context.Context, id uuid.UUID, status domain.RoomStatus) error
	DeleteRoom(ctx context.Context, id uuid.UUID) error
	CheckoutRoom(ctx context.Context, id uuid.UUID) error
	AddExpenseToRoom(ctx context.Context, id uuid.UUID, ex domain.Expense) error
	MakeReservation(ctx context.Context, roomID uuid.UUID, guest domain.Guest) (domain.Reservation, error)
	CancelFutureReservation(ctx context.Context, id uuid.UUID) error
	DeleteHistoryEntry(ctx context.Context, id uuid.UUID) error
}

// SyncTrigger receives the client lifecycle events that request an
// out-of-band sync.
type SyncTrigger interface {
	Focus()
	SetVisible(visible bool)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	desk     FrontDesk
	triggers SyncTrigger
	spec     []byte
	validate *validator.Validate
	log      *slog.Logger
}

// NewServer constructs the Server. spec is the OpenAPI document served at
// /openapi.yaml; a nil log falls back to slog.Default.
func NewServer(desk FrontDesk, triggers SyncTrigger, spec []byte, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		desk:     desk,
		triggers: triggers,
		spec:     spec,
		validate: newValidator(),
		log:      log,
	}
}

// Routes returns the router for every endpoint, with the role middleware
// applied and each route gated by the capability it needs.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.NewRoleHandler())

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/rooms", func(r chi.Router) {
		r.With(middleware.Require(domain.CapViewRooms)).Get("/", s.ListRooms)
		r.With(middleware.Require(domain.CapManageRooms)).Post("/", s.CreateRoom)
		r.Route("/{id}", func(r chi.Router) {
			r.With(middleware.Require(domain.CapManageRooms)).Put("/", s.UpdateRoom)
			r.With(middleware.Require(domain.CapManageRooms)).Delete("/", s.DeleteRoom)
			r.Group(func(r chi.Router) {
				r.Use(middleware.Require(domain.CapFrontDesk))
				r.Put("/status", s.UpdateRoomStatus)
				r.Post("/checkout", s.CheckoutRoom)
				r.Post("/expenses", s.AddExpense)
			})
		})
	})

	r.Route("/reservations", func(r chi.Router) {
		r.With(middleware.Require(domain.CapReserve)).Post("/", s.CreateReservation)
		r.With(middleware.Require(domain.CapViewRooms)).Get("/future", s.ListFutureReservations)
		r.With(middleware.Require(domain.CapFrontDesk)).Delete("/{id}", s.CancelReservation)
	})

	r.With(middleware.Require(domain.CapViewHistory)).Get("/history", s.ListHistory)
	r.With(middleware.Require(domain.CapDeleteHistory)).Delete("/history/{id}", s.DeleteHistory)

	r.With(middleware.Require(domain.CapViewStatistics)).Get("/statistics", s.GetStatistics)

	r.Get("/sync/status", s.GetSyncStatus)
	r.Post("/sync/events", s.PostSyncEvent)

	return r
}

// pathID parses the {id} URL parameter. It writes a 400 and returns false
// when the parameter is not a UUID.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, badRequestBody("id must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}
