// Package repo contains all database access logic for the front desk service.
// It is the Postgres binding of the room store: rooms, guests, reservations,
// and expenses. No business rules live here, only SQL, type mapping, and the
// transactional grouping of multi-row writes.
package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Begin on a pgx.Tx opens a savepoint, so integration tests can pass a
// transaction that is rolled back after each test while the store still
// groups its own writes atomically.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RoomStore is the full persistence contract consumed by the engine.
type RoomStore interface {
	RoomRepo
	ReservationRepo
	ExpenseRepo
}

// pgStore is the Postgres implementation of RoomStore.
type pgStore struct {
	db db
}

// NewRoomStore constructs a RoomStore backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewRoomStore(db db) RoomStore {
	return &pgStore{db: db}
}

// inTx runs fn inside a transaction. Any error from fn rolls back every
// write made through tx.
func (s *pgStore) inTx(ctx context.Context, op string, fn func(tx pgx.Tx) error) error {
	if err := pgx.BeginFunc(ctx, s.db, fn); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}
