package types

// User represents a registered driver account.
// Records are append-only: a user is written once at registration and never
// mutated afterwards.
type User struct {
	// UserID is the server-generated identifier ("driver_" + UUID).
	UserID string `json:"user_id"`

	// Email is the unique lookup key used at login.
	Email string `json:"email"`

	// Name is the driver's display name.
	Name string `json:"name"`

	// Phone is the driver's contact number.
	Phone string `json:"phone"`

	// HashedPassword stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	HashedPassword string `json:"-"`
}

// UserSummary is the authenticated view of a user returned after login.
type UserSummary struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}
