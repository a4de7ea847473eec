package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/pkordes/frontdesk/internal/domain"
)

// RoomRepo defines the persistence operations for Rooms.
type RoomRepo interface {
	// ListRooms returns every room ordered by number. Occupied rooms carry
	// their active guest (with recorded expenses) and the active stay id.
	ListRooms(ctx context.Context) ([]domain.Room, error)

	// CreateRoom inserts a room and returns its DB-generated id.
	// Returns domain.ErrValidation if the room number is already taken.
	CreateRoom(ctx context.Context, room domain.Room) (uuid.UUID, error)

	// UpdateRoom applies a partial update to a room.
	// Returns domain.ErrNotFound if no room with that id exists.
	UpdateRoom(ctx context.Context, id uuid.UUID, patch domain.RoomPatch) error

	// UpdateRoomStatus sets a room's status in one transaction. Moving to
	// occupied with a guest also inserts the guest and an active reservation;
	// moving to available completes the room's active reservation.
	UpdateRoomStatus(ctx context.Context, id uuid.UUID, status domain.RoomStatus, guest *domain.Guest) error

	// DeleteRoom removes a room. Its reservations are removed by cascade.
	// Returns domain.ErrNotFound if no room with that id exists.
	DeleteRoom(ctx context.Context, id uuid.UUID) error

	// CountRooms returns the number of rooms.
	CountRooms(ctx context.Context) (int, error)
}

const roomColumns = `
	r.id, r.number, r.type, r.capacity, r.beds, r.price::text, r.amenities,
	r.status, r.created_at, r.updated_at`

// ListRooms returns all rooms with their current occupant, then attaches each
// occupant's expenses with a single batched query.
func (s *pgStore) ListRooms(ctx context.Context) ([]domain.Room, error) {
	const q = `
		SELECT` + roomColumns + `,
		       res.id, g.id, g.name, g.email, g.phone, g.cpf, g.check_in, g.check_out, g.num_guests
		FROM rooms r
		LEFT JOIN reservations res ON res.room_id = r.id AND res.status = 'active'
		LEFT JOIN guests g ON g.id = res.guest_id
		ORDER BY r.number`

	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.RoomStore.ListRooms: %w", err)
	}
	defer rows.Close()

	rooms := []domain.Room{}
	var guestIDs []uuid.UUID
	for rows.Next() {
		room, err := scanRoomWithGuest(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.RoomStore.ListRooms: scan: %w", err)
		}
		if room.Guest != nil {
			guestIDs = append(guestIDs, room.Guest.ID)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.RoomStore.ListRooms: rows: %w", err)
	}

	if len(guestIDs) == 0 {
		return rooms, nil
	}
	expenses, err := s.expensesByGuest(ctx, guestIDs)
	if err != nil {
		return nil, fmt.Errorf("repo.RoomStore.ListRooms: %w", err)
	}
	for i := range rooms {
		if g := rooms[i].Guest; g != nil {
			if ex, ok := expenses[g.ID]; ok {
				g.Expenses = ex
			}
		}
	}
	return rooms, nil
}

// CreateRoom inserts a new room row. A zero status defaults to available.
func (s *pgStore) CreateRoom(ctx context.Context, room domain.Room) (uuid.UUID, error) {
	const q = `
		INSERT INTO rooms (number, type, capacity, beds, price, amenities, status)
		VALUES (@number, @type, @capacity, @beds, @price::numeric, @amenities, @status)
		RETURNING id`

	status := room.Status
	if status == "" {
		status = domain.RoomAvailable
	}
	amenities := room.Amenities
	if amenities == nil {
		amenities = []string{}
	}

	var id pgtype.UUID
	err := s.db.QueryRow(ctx, q, pgx.NamedArgs{
		"number":    room.Number,
		"type":      room.Type,
		"capacity":  room.Capacity,
		"beds":      room.Beds,
		"price":     room.Price.String(),
		"amenities": amenities,
		"status":    string(status),
	}).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("repo.RoomStore.CreateRoom: %w", mapConstraint(err))
	}
	return uuid.UUID(id.Bytes), nil
}

// UpdateRoom overwrites only the patched columns; COALESCE keeps the rest.
func (s *pgStore) UpdateRoom(ctx context.Context, id uuid.UUID, patch domain.RoomPatch) error {
	const q = `
		UPDATE rooms
		SET number     = COALESCE(@number, number),
		    type       = COALESCE(@type, type),
		    capacity   = COALESCE(@capacity, capacity),
		    beds       = COALESCE(@beds, beds),
		    price      = COALESCE(@price::numeric, price),
		    amenities  = COALESCE(@amenities, amenities),
		    updated_at = now()
		WHERE id = @id`

	var price *string
	if patch.Price != nil {
		p := patch.Price.String()
		price = &p
	}
	var amenities []string
	if patch.Amenities != nil {
		amenities = *patch.Amenities
		if amenities == nil {
			amenities = []string{}
		}
	}

	tag, err := s.db.Exec(ctx, q, pgx.NamedArgs{
		"id":        id,
		"number":    patch.Number,
		"type":      patch.Type,
		"capacity":  patch.Capacity,
		"beds":      patch.Beds,
		"price":     price,
		"amenities": amenities,
	})
	if err != nil {
		return fmt.Errorf("repo.RoomStore.UpdateRoom: %w", mapConstraint(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.RoomStore.UpdateRoom: %w", domain.ErrNotFound)
	}
	return nil
}

// UpdateRoomStatus changes a room's status and the reservation rows that
// back it, atomically.
func (s *pgStore) UpdateRoomStatus(ctx context.Context, id uuid.UUID, status domain.RoomStatus, guest *domain.Guest) error {
	return s.inTx(ctx, "repo.RoomStore.UpdateRoomStatus", func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE rooms SET status = @status, updated_at = now() WHERE id = @id`,
			pgx.NamedArgs{"id": id, "status": string(status)})
		if err != nil {
			return mapConstraint(err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}

		switch {
		case status == domain.RoomOccupied && guest != nil:
			guestID, err := insertGuest(ctx, tx, *guest)
			if err != nil {
				return err
			}
			_, _, err = insertReservation(ctx, tx, id, guestID, domain.ReservationActive)
			return err
		case status == domain.RoomAvailable:
			_, err := tx.Exec(ctx, `
				UPDATE reservations
				SET status = 'completed', updated_at = now()
				WHERE room_id = @id AND status = 'active'`,
				pgx.NamedArgs{"id": id})
			return err
		}
		return nil
	})
}

// DeleteRoom removes a room by primary key.
func (s *pgStore) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM rooms WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.RoomStore.DeleteRoom: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.RoomStore.DeleteRoom: %w", domain.ErrNotFound)
	}
	return nil
}

// CountRooms returns the number of rooms in the store.
func (s *pgStore) CountRooms(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM rooms`).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.RoomStore.CountRooms: %w", err)
	}
	return n, nil
}

// scanRoomWithGuest maps a rooms row plus the optional LEFT JOINed active
// reservation and guest columns into a domain.Room.
func scanRoomWithGuest(s scanner) (domain.Room, error) {
	var (
		r        domain.Room
		id       pgtype.UUID
		price    string
		status   string
		stayID   pgtype.UUID
		guestID  pgtype.UUID
		name     pgtype.Text
		email    pgtype.Text
		phone    pgtype.Text
		cpf      pgtype.Text
		checkIn  pgtype.Date
		checkOut pgtype.Date
		party    pgtype.Int4
	)

	err := s.Scan(
		&id, &r.Number, &r.Type, &r.Capacity, &r.Beds, &price, &r.Amenities,
		&status, &r.CreatedAt, &r.UpdatedAt,
		&stayID, &guestID, &name, &email, &phone, &cpf, &checkIn, &checkOut, &party,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Room{}, domain.ErrNotFound
		}
		return domain.Room{}, err
	}

	r.ID = uuid.UUID(id.Bytes)
	r.Status = domain.RoomStatus(status)
	if r.Price, err = decimal.NewFromString(price); err != nil {
		return domain.Room{}, fmt.Errorf("parse price %q: %w", price, err)
	}
	if r.Amenities == nil {
		r.Amenities = []string{}
	}

	if guestID.Valid {
		sid := uuid.UUID(stayID.Bytes)
		r.StayID = &sid
		r.Guest = &domain.Guest{
			ID:       uuid.UUID(guestID.Bytes),
			Name:     name.String,
			Email:    email.String,
			Phone:    phone.String,
			CPF:      cpf.String,
			CheckIn:  checkIn.Time,
			CheckOut: checkOut.Time,
			Guests:   int(party.Int32),
			Expenses: []domain.Expense{},
		}
	}
	return r, nil
}

// mapConstraint converts Postgres constraint violations into domain
// validation errors so callers can report them as bad input.
func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505": // unique_violation
		if pgErr.ConstraintName == "reservations_one_active_per_room" {
			return fmt.Errorf("%w: room is already occupied", domain.ErrValidation)
		}
		return fmt.Errorf("%w: room number already exists", domain.ErrValidation)
	case "23514": // check_violation
		return fmt.Errorf("%w: %s", domain.ErrValidation, pgErr.ConstraintName)
	case "23503": // foreign_key_violation
		return fmt.Errorf("%w: referenced room does not exist", domain.ErrNotFound)
	}
	return err
}
