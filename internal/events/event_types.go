package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserCreated    EventType = "user_created"
	EventUserDeleted    EventType = "user_deleted"
	EventProductCreated EventType = "product_created"
	EventProductUpdated EventType = "product_updated"
	EventProductDeleted EventType = "product_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserEventPayload accompanies user lifecycle events.
type UserEventPayload struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

// ProductEventPayload accompanies product lifecycle events.
type ProductEventPayload struct {
	ProductID int64  `json:"product_id"`
	OwnerID   int64  `json:"owner_id"`
	Name      string `json:"name"`
}
