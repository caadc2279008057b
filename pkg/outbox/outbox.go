package outbox

import (
	"context"
	"sync"
	"time"

	"github.com/sakashimaa/storefront/pkg/mylogger"
	"go.uber.org/zap"
)

const (
	defaultCapacity    = 1000
	defaultMaxAttempts = 10
)

// Outbox queues domain events in memory so store actions never wait on the broker.
// It satisfies kafka.EventPublisher; a Processor drains it.
type Outbox struct {
	mu          sync.Mutex
	events      []*Event
	nextID      int64
	capacity    int
	maxAttempts int
	logger      *zap.Logger
	now         func() time.Time
}

func New(capacity, maxAttempts int, logger *zap.Logger) *Outbox {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	return &Outbox{
		capacity:    capacity,
		maxAttempts: maxAttempts,
		logger:      logger,
		now:         time.Now,
	}
}

// Publish enqueues the event. When the queue is full the oldest event is dropped.
func (o *Outbox) Publish(ctx context.Context, event string, payload interface{}) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.nextID++
	o.events = append(o.events, &Event{
		ID:        o.nextID,
		Type:      event,
		Payload:   payload,
		CreatedAt: o.now(),
	})

	if over := len(o.events) - o.capacity; over > 0 {
		for _, dropped := range o.events[:over] {
			mylogger.Warn(
				ctx,
				o.logger,
				"outbox full, dropping oldest event",
				zap.Int64("id", dropped.ID),
				zap.String("event", dropped.Type),
			)
		}
		o.events = append([]*Event(nil), o.events[over:]...)
	}
}

func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return len(o.events)
}

// unpublished returns up to batchSize events in enqueue order.
func (o *Outbox) unpublished(batchSize int) []*Event {
	o.mu.Lock()
	defer o.mu.Unlock()

	n := len(o.events)
	if batchSize > 0 && n > batchSize {
		n = batchSize
	}

	out := make([]*Event, n)
	for i := 0; i < n; i++ {
		e := *o.events[i]
		out[i] = &e
	}
	return out
}

func (o *Outbox) markPublished(id int64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.remove(id)
}

// markFailed records the error and gives up on the event after maxAttempts. It reports
// whether the event was dropped.
func (o *Outbox) markFailed(id int64, errMsg string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, e := range o.events {
		if e.ID != id {
			continue
		}

		e.Attempts++
		e.LastError = errMsg
		if e.Attempts >= o.maxAttempts {
			o.remove(id)
			return true
		}
		return false
	}

	return false
}

func (o *Outbox) remove(id int64) {
	for i, e := range o.events {
		if e.ID == id {
			o.events = append(o.events[:i], o.events[i+1:]...)
			return
		}
	}
}
