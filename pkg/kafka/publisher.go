package kafka

import "context"

// EventPublisher emits storefront domain events. Publishing is best effort and never fails
// the action that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, event string, payload interface{})
}

type noopPublisher struct{}

// NewNoopPublisher drops every event; used when no brokers are configured.
func NewNoopPublisher() EventPublisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, string, interface{}) {}
