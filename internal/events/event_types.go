package events

import (
	"time"

	"github.com/spec-kit/registration-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRegistrationReceived EventType = "registration_received"
	EventRegistrationApproved EventType = "registration_approved"
	EventRegistrationRejected EventType = "registration_rejected"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID             string      `json:"id"`
	Type           EventType   `json:"type"`
	RegistrationID string      `json:"registration_id"`
	Timestamp      time.Time   `json:"timestamp"`
	Payload        interface{} `json:"payload"`
}

// RegistrationReceivedPayload payload.
type RegistrationReceivedPayload struct {
	Registration *domain.Registration `json:"registration"`
}

// RegistrationApprovedPayload payload.
type RegistrationApprovedPayload struct {
	UniqueCode     string `json:"unique_code"`
	OperatorChatID int64  `json:"operator_chat_id"`
}

// RegistrationRejectedPayload payload.
type RegistrationRejectedPayload struct {
	OperatorChatID int64 `json:"operator_chat_id"`
}
