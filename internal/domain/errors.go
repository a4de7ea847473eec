package domain

import "errors"

// ErrNotFound is returned when the requested room, reservation, or history
// entry does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when a command's preconditions fail
// (e.g. check-out before check-in, expense on a room with no active guest).
// No state is mutated when it is returned.
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConnectivity is recorded when the room store cannot be reached during a
// sync. The engine keeps its last-known-good state and retries on the next sync.
var ErrConnectivity = errors.New("room store unavailable")

// ErrTransaction is returned when a write to the room store fails. The store
// rolls back every partial write, so callers must not assume any effect.
var ErrTransaction = errors.New("room store write failed")

// ErrForbidden is returned when the caller's role lacks the capability
// required by an operation.
var ErrForbidden = errors.New("forbidden")
