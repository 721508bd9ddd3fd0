package entity

import "time"

// Run is one past execution of the backend scanner. Stats is kept as the raw
// JSON object the backend sent.
type Run struct {
	ID        int64
	StartedAt time.Time
	// StartedAtText is started_at exactly as the backend sent it.
	StartedAtText string
	FinishedAt    *time.Time
	Status        string
	Message       string
	Stats         []byte
}
