package events

import "time"

// NoticeLevel classifies how a notice should be rendered by the UI shell.
type NoticeLevel string

const (
	LevelInfo    NoticeLevel = "info"
	LevelWarning NoticeLevel = "warning"
	LevelError   NoticeLevel = "error"
)

// Notice is a user-facing message produced by a rejected or no-op editor
// operation (invalid reference, boundary violation, save failure).
type Notice struct {
	SessionID string      `json:"sessionId"`
	Level     NoticeLevel `json:"level"`
	Op        string      `json:"op"`
	Section   string      `json:"section,omitempty"`
	Message   string      `json:"message"`
	At        time.Time   `json:"at"`
}

// DocumentChanged signals that a mutation was applied to a session's document.
// The UI shell re-reads the document value; the event carries no payload.
type DocumentChanged struct {
	SessionID string    `json:"sessionId"`
	Op        string    `json:"op"`
	Section   string    `json:"section,omitempty"`
	Dirty     bool      `json:"dirty"`
	At        time.Time `json:"at"`
}

// SaveCompleted signals the outcome of a save attempt.
type SaveCompleted struct {
	SessionID string    `json:"sessionId"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}
