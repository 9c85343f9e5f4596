package models

import "time"

// Event types
const (
	EventTypeOrderCreated       = "ORDER_CREATED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeOrderCancelled     = "ORDER_CANCELLED"
	EventTypeOrderDeleted       = "ORDER_DELETED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderEventItem represents item data carried in order events
type OrderEventItem struct {
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// OrderCreatedEvent published when an order is placed
type OrderCreatedEvent struct {
	BaseEvent
	OrderID         int64            `json:"order_id"`
	UserID          *int64           `json:"user_id,omitempty"`
	UserOrderNumber int              `json:"user_order_number"`
	Amount          float64          `json:"amount"`
	Items           []OrderEventItem `json:"items"`
}

// OrderStatusChangedEvent published when an admin moves an order
// to a different status
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID   int64  `json:"order_id"`
	UserID    *int64 `json:"user_id,omitempty"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// OrderCancelledEvent published when a user cancels a pending order
type OrderCancelledEvent struct {
	BaseEvent
	OrderID int64  `json:"order_id"`
	UserID  *int64 `json:"user_id,omitempty"`
}

// OrderDeletedEvent published when an admin deletes an order
type OrderDeletedEvent struct {
	BaseEvent
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}
