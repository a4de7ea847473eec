package domain

import (
	"fmt"
	"strings"
)

// Role is the caller's role as supplied by the authentication layer.
type Role int

const (
	RoleGuest Role = iota
	RoleStaff
	RoleAdmin
)

// Capability is an action gated by role.
type Capability int

const (
	// CapViewRooms covers the room list and the future reservation views.
	CapViewRooms Capability = iota
	CapReserve
	// CapFrontDesk covers checkout, cancellation, expenses, and status changes.
	CapFrontDesk
	CapViewHistory
	CapManageRooms
	CapDeleteHistory
	CapViewStatistics
)

var grants = map[Role][]Capability{
	RoleGuest: {CapViewRooms, CapReserve},
	RoleStaff: {CapViewRooms, CapReserve, CapFrontDesk, CapViewHistory},
	RoleAdmin: {
		CapViewRooms, CapReserve, CapFrontDesk, CapViewHistory,
		CapManageRooms, CapDeleteHistory, CapViewStatistics,
	},
}

// Can reports whether r holds capability c.
func (r Role) Can(c Capability) bool {
	for _, g := range grants[r] {
		if g == c {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleStaff:
		return "staff"
	default:
		return "guest"
	}
}

// ParseRole converts a role name into a Role.
// Returns ErrValidation for unknown names.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, nil
	case "staff":
		return RoleStaff, nil
	case "guest":
		return RoleGuest, nil
	}
	return RoleGuest, fmt.Errorf("%w: unknown role %q", ErrValidation, s)
}
