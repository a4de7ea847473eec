// Package pricing computes stay lengths and stay totals.
// All functions are pure; "today" is always supplied by the caller.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pkordes/frontdesk/internal/domain"
)

// Date returns t's calendar day as UTC midnight. Dates from the store and
// the clock's "now" may carry different locations; normalizing both with Date
// makes them comparable by calendar day alone.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Nights returns the number of nights billed between checkIn and checkOut,
// ignoring time of day. A same-day stay bills one night. A check-out before
// the check-in yields 0.
func Nights(checkIn, checkOut time.Time) int {
	days := calendarDays(checkIn, checkOut)
	switch {
	case days < 0:
		return 0
	case days == 0:
		return 1
	default:
		return days
	}
}

// calendarDays counts day boundaries between a and b. Both dates are moved to
// UTC midnight first so DST transitions in the local zone cannot shift the
// result by an hour.
func calendarDays(a, b time.Time) int {
	return int(Date(b).Sub(Date(a)).Hours() / 24)
}

// ExpenseSum adds up the value of every expense.
func ExpenseSum(expenses []domain.Expense) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range expenses {
		sum = sum.Add(e.Value)
	}
	return sum
}

// StayTotal returns rate * party * nights + the sum of expenses.
func StayTotal(rate decimal.Decimal, party, nights int, expenses []domain.Expense) decimal.Decimal {
	lodging := rate.Mul(decimal.NewFromInt(int64(party))).Mul(decimal.NewFromInt(int64(nights)))
	return lodging.Add(ExpenseSum(expenses))
}

// GuestTotal prices a guest's whole stay at the given nightly rate.
func GuestTotal(rate decimal.Decimal, g domain.Guest) decimal.Decimal {
	return StayTotal(rate, g.Guests, Nights(g.CheckIn, g.CheckOut), g.Expenses)
}
