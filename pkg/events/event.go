package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "TICKET_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Domain event codes emitted by the chatbot backend.
const (
	TypeExchangeMirrored = "EXCHANGE_MIRRORED"
	TypeTicketCreated    = "TICKET_CREATED"
	TypeFeedbackReceived = "FEEDBACK_RECEIVED"
)

func NewExchangeMirrored(userID, vectorID string) BaseEvent {
	return BaseEvent{
		Type: TypeExchangeMirrored,
		Data: map[string]interface{}{
			"user_id":   userID,
			"vector_id": vectorID,
		},
		OccurredAt: time.Now(),
	}
}

func NewTicketCreated(ticketID, priority string) BaseEvent {
	return BaseEvent{
		Type: TypeTicketCreated,
		Data: map[string]interface{}{
			"ticket_id": ticketID,
			"priority":  priority,
		},
		OccurredAt: time.Now(),
	}
}

func NewFeedbackReceived(sessionID string, rating int) BaseEvent {
	return BaseEvent{
		Type: TypeFeedbackReceived,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"rating":     rating,
		},
		OccurredAt: time.Now(),
	}
}
