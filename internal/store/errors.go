package store

import "errors"

// Sentinel errors returned by the store adapter. Handlers map these to
// transport status codes at the router boundary; internal detail stays in
// the logs.
var (
	// ErrUserNotFound is returned when a referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrEventNotFound is returned when a referenced event does not exist.
	ErrEventNotFound = errors.New("event not found")

	// ErrEmailTaken is returned when registering an email that already has
	// a user record.
	ErrEmailTaken = errors.New("email already registered")

	// ErrUnavailable wraps transient connectivity or timeout failures
	// against the time-series store.
	ErrUnavailable = errors.New("storage unavailable")
)
