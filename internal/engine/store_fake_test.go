package engine_test

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/frontdesk/internal/domain"
	"github.com/pkordes/frontdesk/internal/pricing"
	"github.com/pkordes/frontdesk/internal/repo"
)

// fakeStore is an in-memory repo.RoomStore with the same date rules as the
// Postgres store. Setting one of the fail* fields makes the matching calls
// return that error.
type fakeStore struct {
	mu           sync.Mutex
	rooms        map[uuid.UUID]domain.Room
	reservations []domain.Reservation
	expenses     map[uuid.UUID][]domain.Expense

	failListRooms  error
	failListFuture error
	failWrites     error

	// afterCreate runs once CreateReservation has stored the reservation.
	afterCreate func()

	activations int
}

var _ repo.RoomStore = (*fakeStore)(nil)

func newFakeStore(rooms ...domain.Room) *fakeStore {
	s := &fakeStore{
		rooms:    make(map[uuid.UUID]domain.Room),
		expenses: make(map[uuid.UUID][]domain.Expense),
	}
	for _, r := range rooms {
		if r.Status == "" {
			r.Status = domain.RoomAvailable
		}
		s.rooms[r.ID] = r
	}
	return s
}

func (s *fakeStore) set(fn func(*fakeStore)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

func (s *fakeStore) ListRooms(ctx context.Context) ([]domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failListRooms != nil {
		return nil, s.failListRooms
	}
	out := make([]domain.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		r.Guest, r.StayID = nil, nil
		for _, res := range s.reservations {
			if res.RoomID == r.ID && res.Status == domain.ReservationActive {
				g := res.Guest
				g.Expenses = append([]domain.Expense{}, s.expenses[g.ID]...)
				id := res.ID
				r.Guest, r.StayID = &g, &id
			}
		}
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b domain.Room) int { return strings.Compare(a.Number, b.Number) })
	return out, nil
}

func (s *fakeStore) CreateRoom(_ context.Context, room domain.Room) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites != nil {
		return uuid.Nil, s.failWrites
	}
	room.ID = uuid.New()
	s.rooms[room.ID] = room
	return room.ID, nil
}

func (s *fakeStore) UpdateRoom(_ context.Context, id uuid.UUID, patch domain.RoomPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites != nil {
		return s.failWrites
	}
	r, ok := s.rooms[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.rooms[id] = patch.Apply(r)
	return nil
}

func (s *fakeStore) UpdateRoomStatus(_ context.Context, id uuid.UUID, status domain.RoomStatus, guest *domain.Guest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites != nil {
		return s.failWrites
	}
	r, ok := s.rooms[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.Status = status
	s.rooms[id] = r

	switch {
	case status == domain.RoomOccupied && guest != nil:
		g := *guest
		g.ID = uuid.New()
		s.reservations = append(s.reservations, domain.Reservation{
			ID: uuid.New(), RoomID: id, Guest: g, Status: domain.ReservationActive,
		})
	case status == domain.RoomAvailable:
		for i := range s.reservations {
			if s.reservations[i].RoomID == id && s.reservations[i].Status == domain.ReservationActive {
				s.reservations[i].Status = domain.ReservationCompleted
			}
		}
	}
	return nil
}

func (s *fakeStore) DeleteRoom(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites != nil {
		return s.failWrites
	}
	if _, ok := s.rooms[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.rooms, id)
	s.reservations = slices.DeleteFunc(s.reservations, func(r domain.Reservation) bool { return r.RoomID == id })
	return nil
}

func (s *fakeStore) CountRooms(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms), nil
}

func (s *fakeStore) ListFutureReservations(ctx context.Context, today time.Time) ([]domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failListFuture != nil {
		return nil, s.failListFuture
	}
	out := []domain.Reservation{}
	for _, r := range s.reservations {
		if r.Status == domain.ReservationFuture && pricing.Date(r.Guest.CheckIn).After(pricing.Date(today)) {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Reservation) int { return a.Guest.CheckIn.Compare(b.Guest.CheckIn) })
	return out, nil
}

func (s *fakeStore) CreateReservation(ctx context.Context, roomID uuid.UUID, guest domain.Guest, today time.Time) (domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Reservation{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites != nil {
		return domain.Reservation{}, s.failWrites
	}
	if s.afterCreate != nil {
		defer s.afterCreate()
	}
	room, ok := s.rooms[roomID]
	if !ok {
		return domain.Reservation{}, domain.ErrNotFound
	}

	guest.ID = uuid.New()
	guest.Expenses = []domain.Expense{}
	res := domain.Reservation{
		ID: uuid.New(), RoomID: roomID, Guest: guest, Status: domain.ReservationFuture, CreatedAt: today,
	}
	if !pricing.Date(guest.CheckIn).After(pricing.Date(today)) {
		res.Status = domain.ReservationActive
		room.Status = domain.RoomOccupied
		s.rooms[roomID] = room
	}
	s.reservations = append(s.reservations, res)
	return res, nil
}

func (s *fakeStore) CancelReservation(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites != nil {
		return s.failWrites
	}
	for i := range s.reservations {
		if s.reservations[i].ID == id && s.reservations[i].Status == domain.ReservationFuture {
			s.reservations[i].Status = domain.ReservationCancelled
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *fakeStore) ActivateDueReservations(_ context.Context, today time.Time) ([]domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites != nil {
		return nil, s.failWrites
	}
	s.activations++

	busy := make(map[uuid.UUID]bool)
	for _, r := range s.reservations {
		if r.Status == domain.ReservationActive {
			busy[r.RoomID] = true
		}
	}
	var promoted []domain.Reservation
	for i := range s.reservations {
		r := &s.reservations[i]
		if r.Status != domain.ReservationFuture || pricing.Date(r.Guest.CheckIn).After(pricing.Date(today)) || busy[r.RoomID] {
			continue
		}
		r.Status = domain.ReservationActive
		busy[r.RoomID] = true
		room := s.rooms[r.RoomID]
		room.Status = domain.RoomOccupied
		s.rooms[r.RoomID] = room
		promoted = append(promoted, *r)
	}
	return promoted, nil
}

func (s *fakeStore) AddExpense(_ context.Context, guestID uuid.UUID, e domain.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites != nil {
		return s.failWrites
	}
	s.expenses[guestID] = append(s.expenses[guestID], e)
	return nil
}

func (s *fakeStore) ListGuestExpenses(_ context.Context, guestID uuid.UUID) ([]domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Expense{}, s.expenses[guestID]...), nil
}
