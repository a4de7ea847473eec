package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/frontdesk/internal/domain"
)

// ReservationRepo defines the persistence operations for Reservations.
// "today" is always supplied by the caller so date-driven behaviour follows
// the caller's clock rather than the database server's.
type ReservationRepo interface {
	// ListFutureReservations returns reservations in the future status whose
	// check-in is strictly after today, ordered by check-in.
	ListFutureReservations(ctx context.Context, today time.Time) ([]domain.Reservation, error)

	// CreateReservation inserts the guest and the reservation in one
	// transaction. The reservation is active (and the room occupied) when the
	// check-in is on or before today, and future otherwise.
	// Returns domain.ErrNotFound if the room does not exist.
	CreateReservation(ctx context.Context, roomID uuid.UUID, guest domain.Guest, today time.Time) (domain.Reservation, error)

	// CancelReservation marks a future reservation cancelled.
	// Returns domain.ErrNotFound if no future reservation has that id.
	CancelReservation(ctx context.Context, id uuid.UUID) error

	// ActivateDueReservations promotes every future reservation whose check-in
	// is on or before today to active and marks its room occupied, in one
	// transaction. Rooms that already hold an active stay are skipped, and at
	// most one reservation per room is promoted per call.
	ActivateDueReservations(ctx context.Context, today time.Time) ([]domain.Reservation, error)
}

const reservationColumns = `
	res.id, res.room_id, res.status, res.created_at,
	g.id, g.name, g.email, g.phone, g.cpf, g.check_in, g.check_out, g.num_guests`

// ListFutureReservations returns upcoming reservations with their guests.
func (s *pgStore) ListFutureReservations(ctx context.Context, today time.Time) ([]domain.Reservation, error) {
	const q = `
		SELECT` + reservationColumns + `
		FROM reservations res
		JOIN guests g ON g.id = res.guest_id
		WHERE res.status = 'future' AND g.check_in > @today
		ORDER BY g.check_in, res.created_at`

	rows, err := s.db.Query(ctx, q, pgx.NamedArgs{"today": dateArg(today)})
	if err != nil {
		return nil, fmt.Errorf("repo.RoomStore.ListFutureReservations: %w", err)
	}
	defer rows.Close()

	out := []domain.Reservation{}
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.RoomStore.ListFutureReservations: scan: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.RoomStore.ListFutureReservations: rows: %w", err)
	}
	return out, nil
}

// CreateReservation writes the guest, the reservation, and (for a stay that
// starts today or earlier) the room status as a single unit.
func (s *pgStore) CreateReservation(ctx context.Context, roomID uuid.UUID, guest domain.Guest, today time.Time) (domain.Reservation, error) {
	status := domain.ReservationFuture
	if !dateArg(guest.CheckIn).After(dateArg(today)) {
		status = domain.ReservationActive
	}

	var res domain.Reservation
	err := s.inTx(ctx, "repo.RoomStore.CreateReservation", func(tx pgx.Tx) error {
		guestID, err := insertGuest(ctx, tx, guest)
		if err != nil {
			return err
		}
		id, createdAt, err := insertReservation(ctx, tx, roomID, guestID, status)
		if err != nil {
			return err
		}
		if status == domain.ReservationActive {
			tag, err := tx.Exec(ctx,
				`UPDATE rooms SET status = 'occupied', updated_at = now() WHERE id = @id`,
				pgx.NamedArgs{"id": roomID})
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return domain.ErrNotFound
			}
		}

		g := guest.WithoutExpenses()
		g.ID = guestID
		res = domain.Reservation{ID: id, RoomID: roomID, Guest: g, Status: status, CreatedAt: createdAt}
		return nil
	})
	if err != nil {
		return domain.Reservation{}, err
	}
	return res, nil
}

// CancelReservation flips a future reservation to cancelled.
func (s *pgStore) CancelReservation(ctx context.Context, id uuid.UUID) error {
	const q = `
		UPDATE reservations
		SET status = 'cancelled', updated_at = now()
		WHERE id = @id AND status = 'future'`

	tag, err := s.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.RoomStore.CancelReservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.RoomStore.CancelReservation: %w", domain.ErrNotFound)
	}
	return nil
}

// ActivateDueReservations is the batch promotion job.
func (s *pgStore) ActivateDueReservations(ctx context.Context, today time.Time) ([]domain.Reservation, error) {
	const promote = `
		WITH due AS (
			SELECT DISTINCT ON (res.room_id) res.id
			FROM reservations res
			JOIN guests g ON g.id = res.guest_id
			WHERE res.status = 'future'
			  AND g.check_in <= @today
			  AND NOT EXISTS (
			      SELECT 1 FROM reservations a
			      WHERE a.room_id = res.room_id AND a.status = 'active')
			ORDER BY res.room_id, g.check_in, res.created_at
		)
		UPDATE reservations res
		SET status = 'active', updated_at = now()
		FROM guests g, due
		WHERE res.id = due.id AND g.id = res.guest_id
		RETURNING` + reservationColumns

	var promoted []domain.Reservation
	err := s.inTx(ctx, "repo.RoomStore.ActivateDueReservations", func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, promote, pgx.NamedArgs{"today": dateArg(today)})
		if err != nil {
			return err
		}
		promoted, err = collectReservations(rows)
		if err != nil {
			return err
		}
		if len(promoted) == 0 {
			return nil
		}

		roomIDs := make([]uuid.UUID, 0, len(promoted))
		for _, r := range promoted {
			roomIDs = append(roomIDs, r.RoomID)
		}
		_, err = tx.Exec(ctx,
			`UPDATE rooms SET status = 'occupied', updated_at = now() WHERE id = ANY(@ids)`,
			pgx.NamedArgs{"ids": roomIDs})
		return err
	})
	if err != nil {
		return nil, err
	}
	return promoted, nil
}

// insertGuest writes a guest row and returns its id.
func insertGuest(ctx context.Context, tx pgx.Tx, g domain.Guest) (uuid.UUID, error) {
	const q = `
		INSERT INTO guests (name, email, phone, cpf, check_in, check_out, num_guests)
		VALUES (@name, @email, @phone, @cpf, @check_in, @check_out, @num_guests)
		RETURNING id`

	var id pgtype.UUID
	err := tx.QueryRow(ctx, q, pgx.NamedArgs{
		"name":       g.Name,
		"email":      g.Email,
		"phone":      g.Phone,
		"cpf":        g.CPF,
		"check_in":   dateArg(g.CheckIn),
		"check_out":  dateArg(g.CheckOut),
		"num_guests": g.Guests,
	}).Scan(&id)
	if err != nil {
		return uuid.Nil, mapConstraint(err)
	}
	return uuid.UUID(id.Bytes), nil
}

// insertReservation writes a reservation row and returns its id and creation time.
func insertReservation(ctx context.Context, tx pgx.Tx, roomID, guestID uuid.UUID, status domain.ReservationStatus) (uuid.UUID, time.Time, error) {
	const q = `
		INSERT INTO reservations (room_id, guest_id, status)
		VALUES (@room_id, @guest_id, @status)
		RETURNING id, created_at`

	var (
		id        pgtype.UUID
		createdAt time.Time
	)
	err := tx.QueryRow(ctx, q, pgx.NamedArgs{
		"room_id":  roomID,
		"guest_id": guestID,
		"status":   string(status),
	}).Scan(&id, &createdAt)
	if err != nil {
		return uuid.Nil, time.Time{}, mapConstraint(err)
	}
	return uuid.UUID(id.Bytes), createdAt, nil
}

func collectReservations(rows pgx.Rows) ([]domain.Reservation, error) {
	defer rows.Close()
	out := []domain.Reservation{}
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// scanReservation maps a reservation joined with its guest.
func scanReservation(s scanner) (domain.Reservation, error) {
	var (
		r        domain.Reservation
		id       pgtype.UUID
		roomID   pgtype.UUID
		status   string
		guestID  pgtype.UUID
		checkIn  pgtype.Date
		checkOut pgtype.Date
	)
	err := s.Scan(
		&id, &roomID, &status, &r.CreatedAt,
		&guestID, &r.Guest.Name, &r.Guest.Email, &r.Guest.Phone, &r.Guest.CPF,
		&checkIn, &checkOut, &r.Guest.Guests,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Reservation{}, domain.ErrNotFound
		}
		return domain.Reservation{}, err
	}
	r.ID = uuid.UUID(id.Bytes)
	r.RoomID = uuid.UUID(roomID.Bytes)
	r.Status = domain.ReservationStatus(status)
	r.Guest.ID = uuid.UUID(guestID.Bytes)
	r.Guest.CheckIn = checkIn.Time
	r.Guest.CheckOut = checkOut.Time
	r.Guest.Expenses = []domain.Expense{}
	return r, nil
}

// dateArg strips the time of day so a DATE parameter always carries the
// caller's calendar day.
func dateArg(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
