package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkordes/frontdesk/internal/domain"
)

// RoleHeader carries the caller's role, as established by the
// authentication layer in front of this service.
const RoleHeader = "X-User-Role"

type roleKey struct{}

// NewRoleHandler reads the caller's role from RoleHeader into the request
// context. A missing header means guest; an unknown role is rejected with 400.
func NewRoleHandler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := domain.RoleGuest
			if h := r.Header.Get(RoleHeader); h != "" {
				parsed, err := domain.ParseRole(h)
				if err != nil {
					writeError(w, http.StatusBadRequest, "bad_request", err.Error())
					return
				}
				role = parsed
			}
			next.ServeHTTP(w, r.WithContext(WithRole(r.Context(), role)))
		})
	}
}

// WithRole returns a copy of ctx carrying role.
func WithRole(ctx context.Context, role domain.Role) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

// RoleFrom returns the role stored in ctx, or guest when none is set.
func RoleFrom(ctx context.Context) domain.Role {
	if r, ok := ctx.Value(roleKey{}).(domain.Role); ok {
		return r
	}
	return domain.RoleGuest
}

// Require rejects requests whose role lacks capability c with 403.
func Require(c domain.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !RoleFrom(r.Context()).Can(c) {
				writeError(w, http.StatusForbidden, "forbidden", "role "+RoleFrom(r.Context()).String()+" may not perform this action")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes the same error body the handlers use.
func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(struct {
		Error errorDetail `json:"error"`
	}{errorDetail{Code: code, Message: msg}})
}
