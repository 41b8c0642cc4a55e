package service

import "errors"

// Sentinel errors for the service layer. Handlers translate these to
// HTTP status codes with errors.Is.
var (
	// ErrInvalidInput flags a malformed request body or a bad enum value.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidCredentials is returned for unknown emails and wrong
	// passwords alike, so callers get no user-enumeration signal.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUnauthenticated is returned when no principal is bound to the
	// request context.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden is returned when the caller is not the owner of the
	// requested todo.
	ErrForbidden = errors.New("access denied")

	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken is returned when registering an already-used email.
	ErrEmailTaken = errors.New("email already registered")
)
