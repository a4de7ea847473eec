package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/frontdesk/internal/domain"
)

func TestParseRole(t *testing.T) {
	for in, want := range map[string]domain.Role{
		"admin": domain.RoleAdmin,
		"Staff": domain.RoleStaff,
		" guest ": domain.RoleGuest,
	} {
		got, err := domain.ParseRole(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseRole_Unknown(t *testing.T) {
	_, err := domain.ParseRole("manager")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRole_Can(t *testing.T) {
	tests := []struct {
		role domain.Role
		cap  domain.Capability
		want bool
	}{
		{domain.RoleGuest, domain.CapViewRooms, true},
		{domain.RoleGuest, domain.CapReserve, true},
		{domain.RoleGuest, domain.CapFrontDesk, false},
		{domain.RoleGuest, domain.CapViewStatistics, false},
		{domain.RoleStaff, domain.CapFrontDesk, true},
		{domain.RoleStaff, domain.CapViewHistory, true},
		{domain.RoleStaff, domain.CapManageRooms, false},
		{domain.RoleStaff, domain.CapViewStatistics, false},
		{domain.RoleAdmin, domain.CapManageRooms, true},
		{domain.RoleAdmin, domain.CapDeleteHistory, true},
		{domain.RoleAdmin, domain.CapViewStatistics, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.role.Can(tt.cap), "%s can %d", tt.role, tt.cap)
	}
}
