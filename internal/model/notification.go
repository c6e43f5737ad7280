package model

import "time"

// Notification is one fire-and-forget message to a user. The orchestration
// core only writes these rows; delivery and read-tracking live elsewhere.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	IsRead    bool      `json:"is_read"`
	RequestID *string   `json:"request_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
