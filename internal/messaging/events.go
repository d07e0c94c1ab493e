package messaging

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	UserRegisteredEvent EventType = "user.registered"
	OrderCreatedEvent   EventType = "order.created"
	OrderPaidEvent      EventType = "order.paid"
	OrderCancelledEvent EventType = "order.cancelled"
)

// Event is the envelope published to the shop exchange. Routing keys are
// shop.<service>.<event_type>, so consumers can bind per concern.
type Event struct {
	ID            uuid.UUID   `json:"id"`
	UserID        uuid.UUID   `json:"user_id"`
	OrderID       uuid.UUID   `json:"order_id,omitempty"`
	EventType     EventType   `json:"event_type"`
	Payload       interface{} `json:"payload"`
	Timestamp     time.Time   `json:"timestamp"`
	Service       string      `json:"service"`
	CorrelationID uuid.UUID   `json:"correlation_id"`
}

type UserRegisteredPayload struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
}

type OrderCreatedPayload struct {
	OrderNumber string  `json:"order_number"`
	Email       string  `json:"email"`
	FirstName   string  `json:"first_name"`
	Total       float64 `json:"total"`
}

type OrderPaidPayload struct {
	OrderNumber string  `json:"order_number"`
	Email       string  `json:"email"`
	FirstName   string  `json:"first_name"`
	Total       float64 `json:"total"`
}

type OrderCancelledPayload struct {
	OrderNumber string `json:"order_number"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	Reason      string `json:"reason,omitempty"`
}
