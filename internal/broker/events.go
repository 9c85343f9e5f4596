package broker

import (
	"context"
	"fmt"

	"shop-backend/internal/models"
)

// EventPublisher publishes order lifecycle events for downstream consumers
// (admin dashboard feeds, analytics). Delivery is best effort: callers log
// and continue on failure.
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderCreated publishes an OrderCreated event
func (ep *EventPublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishOrderStatusChanged publishes an OrderStatusChanged event
func (ep *EventPublisher) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishOrderCancelled publishes an OrderCancelled event
func (ep *EventPublisher) PublishOrderCancelled(ctx context.Context, event *models.OrderCancelledEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishOrderDeleted publishes an OrderDeleted event
func (ep *EventPublisher) PublishOrderDeleted(ctx context.Context, event *models.OrderDeletedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

func orderKey(orderID int64) string {
	return fmt.Sprintf("order-%d", orderID)
}
