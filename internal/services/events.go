package services

import (
	"context"

	"catalog/internal/models"
)

// EventPublisher delivers product change events to interested consumers.
type EventPublisher interface {
	PublishProductEvent(ctx context.Context, event models.ProductEvent) error
}

// JSONPublisher is implemented by *rabbitmq.Client.
type JSONPublisher interface {
	PublishJSON(messageID string, payload any) error
}

// QueueEventPublisher publishes events as JSON messages on a broker queue.
type QueueEventPublisher struct {
	client JSONPublisher
}

// NewQueueEventPublisher creates a publisher on top of a queue client.
func NewQueueEventPublisher(client JSONPublisher) *QueueEventPublisher {
	return &QueueEventPublisher{client: client}
}

// PublishProductEvent implements EventPublisher.
func (p *QueueEventPublisher) PublishProductEvent(_ context.Context, event models.ProductEvent) error {
	return p.client.PublishJSON(event.EventID, event)
}
