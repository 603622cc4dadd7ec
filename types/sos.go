package types

// SOS is a distress report tied to a previously recorded event.
// SOS records are append-only and reference both a pre-existing user and a
// pre-existing event.
type SOS struct {
	// SOSID is the server-generated UUID assigned at write time.
	SOSID string `json:"sos_id"`

	// UserID references the reporting user.
	UserID string `json:"user_id"`

	// EventID references the detection event that triggered the distress call.
	EventID string `json:"event_id"`

	// Message is the free-form distress message.
	Message string `json:"message"`

	// Latitude and Longitude locate the vehicle when the SOS was raised.
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// Timestamp is the server-assigned write time in nanoseconds since epoch.
	Timestamp int64 `json:"timestamp,omitempty"`
}
