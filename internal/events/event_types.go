package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLoginSucceeded EventType = "login_succeeded"
	EventLoginFailed    EventType = "login_failed"
	EventLoginLocked    EventType = "login_locked"
	EventTokensRotated  EventType = "tokens_rotated"
	EventAccessDenied   EventType = "access_denied"
)

// Event represents an authentication or authorization outcome worth auditing.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Subject   string      `json:"subject,omitempty"`
	Path      string      `json:"path"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// AccessDeniedPayload names the verification failures behind a rejection.
type AccessDeniedPayload struct {
	AccessFailure  string `json:"access_failure"`
	RefreshFailure string `json:"refresh_failure"`
}

// TokensRotatedPayload records where a rotated pair was minted.
type TokensRotatedPayload struct {
	IssuingContext   string    `json:"issuing_context"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}
