package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Guest is the party attached to a stay. It is embedded in a Room while the
// room is occupied and in a Reservation while the stay is in the future.
// ID is the store's guest row and is zero for a guest not yet persisted.
type Guest struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	CPF      string    `json:"cpf"`
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
	Guests   int       `json:"guests"`
	Expenses []Expense `json:"expenses"`
}

// Expense is an incidental charge recorded against an active guest.
type Expense struct {
	Description string          `json:"description"`
	Value       decimal.Decimal `json:"value"`
}

// WithoutExpenses returns a copy of g with an empty, non-nil expense list.
// Guests start every stay with no charges.
func (g Guest) WithoutExpenses() Guest {
	g.Expenses = []Expense{}
	return g
}

// WithExpense returns a copy of g with e appended. The original slice is
// never shared with the copy.
func (g Guest) WithExpense(e Expense) Guest {
	out := make([]Expense, 0, len(g.Expenses)+1)
	out = append(out, g.Expenses...)
	g.Expenses = append(out, e)
	return g
}
