package types

// Event is a single detection report from the edge client.
// Events are append-only and always reference a pre-existing user.
type Event struct {
	// EventID is the server-generated UUID assigned at write time.
	EventID string `json:"event_id"`

	// UserID references the reporting user.
	UserID string `json:"user_id"`

	// EventType is a free-form detection tag, e.g. "drowsy" or "active".
	EventType string `json:"event_type"`

	// Confidence is the detector's confidence, semantically 0.0-1.0.
	Confidence float64 `json:"confidence"`

	// Timestamp is the server-assigned write time in nanoseconds since epoch.
	Timestamp int64 `json:"timestamp,omitempty"`
}
