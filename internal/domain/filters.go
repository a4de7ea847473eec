package domain

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Filters narrows the room list. Zero values mean "no constraint":
// an empty Type or Status matches every room, a zero MinPrice or MaxPrice
// leaves that bound open, and an empty Search matches everything.
type Filters struct {
	Type     string
	Status   RoomStatus
	MinPrice decimal.Decimal
	MaxPrice decimal.Decimal
	Search   string
}

// Apply returns the rooms matching f, preserving input order.
// The result is never nil.
func (f Filters) Apply(rooms []Room) []Room {
	out := make([]Room, 0, len(rooms))
	term := fold(strings.TrimSpace(f.Search))
	for _, r := range rooms {
		if f.match(r, term) {
			out = append(out, r)
		}
	}
	return out
}

func (f Filters) match(r Room, term string) bool {
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.MinPrice.IsPositive() && r.Price.LessThan(f.MinPrice) {
		return false
	}
	if f.MaxPrice.IsPositive() && r.Price.GreaterThan(f.MaxPrice) {
		return false
	}
	if term == "" {
		return true
	}
	if strings.Contains(fold(r.Number), term) || strings.Contains(fold(r.Type), term) {
		return true
	}
	return r.Guest != nil && strings.Contains(fold(r.Guest.Name), term)
}

// fold normalizes s for matching that ignores case and accents, so "jose"
// finds "José" in either its composed or decomposed form.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = norm.NFC.String(s)
	}
	return cases.Fold().String(stripped)
}
