package domain

import "time"

// SessionIntent distinguishes why the operator is being asked for a code.
// Both intents resolve through the same code-acceptance path; the split only
// drives prompt copy.
type SessionIntent string

const (
	IntentAwaitingApprovalCode SessionIntent = "awaiting_approval_code"
	IntentAwaitingCustomCode   SessionIntent = "awaiting_custom_code"
)

// ApprovalSession tracks an operator mid-way through supplying a manual code
// for a registration. Sessions are keyed by the operator's chat id: one live
// session per chat, last writer wins.
type ApprovalSession struct {
	ChatID         int64         `json:"chat_id"`
	RegistrationID string        `json:"registration_id"`
	Intent         SessionIntent `json:"intent"`
	CreatedAt      time.Time     `json:"created_at"`
	ExpiresAt      time.Time     `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s *ApprovalSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// NewApprovalSession creates a session bound to a registration with a fixed TTL.
func NewApprovalSession(chatID int64, registrationID string, intent SessionIntent, ttl time.Duration, now time.Time) *ApprovalSession {
	return &ApprovalSession{
		ChatID:         chatID,
		RegistrationID: registrationID,
		Intent:         intent,
		CreatedAt:      now,
		ExpiresAt:      now.Add(ttl),
	}
}
