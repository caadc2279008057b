package domain

import "time"

const (
	EventCartUpdated    = "CartUpdated"
	EventOrderPlaced    = "OrderPlaced"
	EventOrderCancelled = "OrderCancelled"
)

type CartUpdatedEvent struct {
	CartID    string    `json:"cart_id"`
	Action    string    `json:"action"`
	ItemCount int       `json:"item_count"`
	Total     string    `json:"total"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OrderPlacedEvent struct {
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Email       string    `json:"email"`
	Total       string    `json:"total"`
	PlacedAt    time.Time `json:"placed_at"`
}

type OrderCancelledEvent struct {
	OrderID     string    `json:"order_id"`
	CancelledAt time.Time `json:"cancelled_at"`
}

// Envelope is the message written to the events topic. EventID grows per process and lets
// consumers drop redeliveries.
type Envelope struct {
	EventID    int64       `json:"event_id"`
	Event      string      `json:"event"`
	Payload    interface{} `json:"payload"`
	OccurredAt time.Time   `json:"occurred_at"`
}
