package outbox

import "time"

// Event is one queued domain event waiting to be relayed to the broker.
type Event struct {
	ID        int64
	Type      string
	Payload   interface{}
	CreatedAt time.Time
	Attempts  int
	LastError string
}
