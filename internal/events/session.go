package events

import "time"

// SessionEventType enumerates auth lifecycle events.
type SessionEventType string

const (
	SessionStarted   SessionEventType = "session-started"
	SessionRefreshed SessionEventType = "session-refreshed"
	SessionEnded     SessionEventType = "session-ended"
)

// SessionEvent is published by the auth session manager. Stores that hold
// per-user state subscribe and purge themselves on SessionEnded.
type SessionEvent struct {
	Type   SessionEventType
	UserID string
	At     time.Time
}
