package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/pkordes/frontdesk/internal/domain"
)

// ExpenseRepo defines the persistence operations for guest Expenses.
type ExpenseRepo interface {
	// AddExpense records an expense against a guest.
	// Returns domain.ErrNotFound if the guest does not exist.
	AddExpense(ctx context.Context, guestID uuid.UUID, expense domain.Expense) error

	// ListGuestExpenses returns a guest's expenses in the order recorded.
	ListGuestExpenses(ctx context.Context, guestID uuid.UUID) ([]domain.Expense, error)
}

// AddExpense inserts one expense row.
func (s *pgStore) AddExpense(ctx context.Context, guestID uuid.UUID, e domain.Expense) error {
	const q = `
		INSERT INTO expenses (guest_id, description, value)
		VALUES (@guest_id, @description, @value::numeric)`

	_, err := s.db.Exec(ctx, q, pgx.NamedArgs{
		"guest_id":    guestID,
		"description": e.Description,
		"value":       e.Value.String(),
	})
	if err != nil {
		return fmt.Errorf("repo.RoomStore.AddExpense: %w", mapConstraint(err))
	}
	return nil
}

// ListGuestExpenses returns all expenses of one guest.
func (s *pgStore) ListGuestExpenses(ctx context.Context, guestID uuid.UUID) ([]domain.Expense, error) {
	byGuest, err := s.expensesByGuest(ctx, []uuid.UUID{guestID})
	if err != nil {
		return nil, fmt.Errorf("repo.RoomStore.ListGuestExpenses: %w", err)
	}
	if ex, ok := byGuest[guestID]; ok {
		return ex, nil
	}
	return []domain.Expense{}, nil
}

// expensesByGuest loads the expenses of several guests in one query.
func (s *pgStore) expensesByGuest(ctx context.Context, guestIDs []uuid.UUID) (map[uuid.UUID][]domain.Expense, error) {
	const q = `
		SELECT guest_id, description, value::text
		FROM expenses
		WHERE guest_id = ANY(@ids)
		ORDER BY id`

	rows, err := s.db.Query(ctx, q, pgx.NamedArgs{"ids": guestIDs})
	if err != nil {
		return nil, fmt.Errorf("expenses: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]domain.Expense)
	for rows.Next() {
		var (
			guestID pgtype.UUID
			e       domain.Expense
			value   string
		)
		if err := rows.Scan(&guestID, &e.Description, &value); err != nil {
			return nil, fmt.Errorf("expenses: scan: %w", err)
		}
		if e.Value, err = decimal.NewFromString(value); err != nil {
			return nil, fmt.Errorf("expenses: parse value %q: %w", value, err)
		}
		id := uuid.UUID(guestID.Bytes)
		out[id] = append(out[id], e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("expenses: rows: %w", err)
	}
	return out, nil
}
