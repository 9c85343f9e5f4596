package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"shop-backend/internal/models"
	"shop-backend/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderStore is the slice of the store the order lifecycle needs
type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) ([]models.OrderItem, error)
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) error
	DeleteOrder(ctx context.Context, orderID int64) error
	GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error)
	GetOrders(ctx context.Context) ([]models.Order, error)
	GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error)
}

// Notifier creates a notification record and forwards it to push delivery
type Notifier interface {
	Notify(ctx context.Context, userID int64, title, message string, orderID *int64, notificationType string) (*models.Notification, error)
}

// OrderEventPublisher publishes order lifecycle events to the event stream
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
	PublishOrderCancelled(ctx context.Context, event *models.OrderCancelledEvent) error
	PublishOrderDeleted(ctx context.Context, event *models.OrderDeletedEvent) error
}

// OrderService owns order creation, status transitions and deletion, and
// drives the inventory ledger and notification dispatch
type OrderService struct {
	store     OrderStore
	inventory *InventoryLedger
	notifier  Notifier
	events    OrderEventPublisher
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store OrderStore, inventory *InventoryLedger, notifier Notifier, events OrderEventPublisher) *OrderService {
	return &OrderService{
		store:     store,
		inventory: inventory,
		notifier:  notifier,
		events:    events,
		logger:    util.GetLogger(),
	}
}

// CreateOrderRequest represents a request to place an order
type CreateOrderRequest struct {
	Amount       float64             `json:"total_amount" binding:"required"`
	DeliveryInfo models.DeliveryInfo `json:"delivery_info" binding:"required"`
	Items        []OrderItemRequest  `json:"items" binding:"required,min=1"`
}

// OrderItemRequest is one purchased line in a create request. Title, price
// and image are snapshotted as sent; later product changes must not alter
// the historical order.
type OrderItemRequest struct {
	ProductID int64   `json:"product_id" binding:"required"`
	Title     string  `json:"title" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"image_url"`
}

// Create places a new order for the user: the order and its item snapshots
// are persisted, then stock is decremented per line. A missing product only
// skips that line's stock adjustment; the order itself still succeeds.
func (s *OrderService) Create(ctx context.Context, userID *int64, req *CreateOrderRequest) (*models.Order, []models.OrderItem, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Create")
	defer span.End()

	snapshots := make(models.ItemsData, 0, len(req.Items))
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		snapshots = append(snapshots, models.ItemSnapshot{
			ProductID: it.ProductID,
			Title:     it.Title,
			Quantity:  it.Quantity,
			Price:     it.Price,
			ImageURL:  it.ImageURL,
		})
		items = append(items, models.OrderItem{
			ProductID: it.ProductID,
			Title:     it.Title,
			Quantity:  it.Quantity,
			Price:     it.Price,
			ImageURL:  it.ImageURL,
		})
	}

	order := &models.Order{
		UserID:       userID,
		Amount:       req.Amount,
		Status:       models.OrderStatusPending,
		DeliveryInfo: req.DeliveryInfo,
		ItemsData:    snapshots,
	}

	createdItems, err := s.store.CreateOrder(ctx, order, items)
	if err != nil {
		return nil, nil, err
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.Int("user_order_number", order.UserOrderNumber))

	for _, item := range createdItems {
		if err := s.inventory.Decrement(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Error("Failed to decrement stock",
				zap.Int64("order_id", order.ID),
				zap.Int64("product_id", item.ProductID),
				zap.Error(err))
		}
	}

	eventItems := make([]models.OrderEventItem, 0, len(createdItems))
	for _, item := range createdItems {
		eventItems = append(eventItems, models.OrderEventItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	event := &models.OrderCreatedEvent{
		BaseEvent:       newBaseEvent(models.EventTypeOrderCreated),
		OrderID:         order.ID,
		UserID:          order.UserID,
		UserOrderNumber: order.UserOrderNumber,
		Amount:          order.Amount,
		Items:           eventItems,
	}
	if err := s.events.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	return order, createdItems, nil
}

// UpdateStatus moves an order to a new status. Any transition between the
// five known statuses is accepted; an unknown value is a validation error.
// Setting the current status again is a no-op with no side effects.
// On a real change one ORDER_STATUS notification is created and one push
// attempt is made; neither outcome rolls back the stored status.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, newStatus string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateStatus")
	defer span.End()

	if !models.IsValidOrderStatus(newStatus) {
		return nil, NewValidationError("invalid order status: %q", newStatus)
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, NewNotFoundError("order not found: %d", orderID)
	}

	if order.Status == newStatus {
		return order, nil
	}

	oldStatus := order.Status
	if err := s.store.UpdateOrderStatus(ctx, orderID, newStatus); err != nil {
		return nil, err
	}
	order.Status = newStatus
	util.OrderStatusUpdatesTotal.WithLabelValues(newStatus).Inc()

	s.logger.Info("Order status updated",
		zap.Int64("order_id", orderID),
		zap.String("old_status", oldStatus),
		zap.String("new_status", newStatus))

	if order.UserID != nil {
		_, err := s.notifier.Notify(ctx, *order.UserID,
			"Order Status Updated",
			statusMessage(order, newStatus),
			&order.ID,
			models.NotificationTypeOrderStatus)
		if err != nil {
			s.logger.Error("Failed to create status notification",
				zap.Int64("order_id", orderID),
				zap.Error(err))
		}
	}

	event := &models.OrderStatusChangedEvent{
		BaseEvent: newBaseEvent(models.EventTypeOrderStatusChanged),
		OrderID:   orderID,
		UserID:    order.UserID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}
	if err := s.events.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}

	return order, nil
}

// Cancel is user self-service cancellation. Only the owning user may cancel,
// and only while the order is still pending: cancellation must not be usable
// to unwind an order that has already moved on.
func (s *OrderService) Cancel(ctx context.Context, orderID, userID int64) error {
	ctx, span := util.StartSpan(ctx, "OrderService.Cancel")
	defer span.End()

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil || order.UserID == nil || *order.UserID != userID {
		return NewNotFoundError("order not found or not yours: %d", orderID)
	}

	if !strings.EqualFold(order.Status, models.OrderStatusPending) {
		return NewInvalidStateError(
			"cannot cancel order with status %q: only pending orders can be cancelled", order.Status)
	}

	if err := s.restoreStock(ctx, orderID); err != nil {
		return err
	}
	if err := s.store.DeleteOrder(ctx, orderID); err != nil {
		return err
	}

	util.OrdersCancelledTotal.Inc()
	s.logger.Info("Order cancelled by user",
		zap.Int64("order_id", orderID),
		zap.Int64("user_id", userID))

	event := &models.OrderCancelledEvent{
		BaseEvent: newBaseEvent(models.EventTypeOrderCancelled),
		OrderID:   orderID,
		UserID:    order.UserID,
	}
	if err := s.events.PublishOrderCancelled(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCancelled event", zap.Error(err))
	}

	return nil
}

// AdminDelete removes an order regardless of status or owner, restoring
// stock for every line item first. This is an administrative correction
// tool; no notification is created.
func (s *OrderService) AdminDelete(ctx context.Context, orderID int64) error {
	ctx, span := util.StartSpan(ctx, "OrderService.AdminDelete")
	defer span.End()

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return NewNotFoundError("order not found: %d", orderID)
	}

	if err := s.restoreStock(ctx, orderID); err != nil {
		return err
	}
	if err := s.store.DeleteOrder(ctx, orderID); err != nil {
		return err
	}

	util.OrdersDeletedTotal.Inc()
	s.logger.Info("Order deleted by admin",
		zap.Int64("order_id", orderID),
		zap.String("status", order.Status))

	event := &models.OrderDeletedEvent{
		BaseEvent: newBaseEvent(models.EventTypeOrderDeleted),
		OrderID:   orderID,
		Status:    order.Status,
	}
	if err := s.events.PublishOrderDeleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderDeleted event", zap.Error(err))
	}

	return nil
}

// restoreStock returns every line item's quantity to its product
func (s *OrderService) restoreStock(ctx context.Context, orderID int64) error {
	items, err := s.store.GetOrderItemsByOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := s.inventory.Increment(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Error("Failed to restore stock",
				zap.Int64("order_id", orderID),
				zap.Int64("product_id", item.ProductID),
				zap.Error(err))
		}
	}
	return nil
}

// Get retrieves an order with its line items
func (s *OrderService) Get(ctx context.Context, orderID int64) (*models.Order, []models.OrderItem, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, NewNotFoundError("order not found: %d", orderID)
	}

	items, err := s.store.GetOrderItemsByOrderID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	return order, items, nil
}

// Status returns the current status of an order
func (s *OrderService) Status(ctx context.Context, orderID int64) (string, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if order == nil {
		return "", NewNotFoundError("order not found: %d", orderID)
	}
	return order.Status, nil
}

// ListForUser returns the user's orders, newest first
func (s *OrderService) ListForUser(ctx context.Context, userID int64) ([]models.Order, error) {
	return s.store.GetOrdersByUserID(ctx, userID)
}

// ListAll returns every order (admin listing)
func (s *OrderService) ListAll(ctx context.Context) ([]models.Order, error) {
	return s.store.GetOrders(ctx)
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

// statusMessage builds the user-facing text for a status change
func statusMessage(order *models.Order, status string) string {
	var verb string
	switch status {
	case models.OrderStatusPending:
		verb = "received and is pending"
	case models.OrderStatusAccepted:
		verb = "accepted"
	case models.OrderStatusRefused:
		verb = "refused"
	case models.OrderStatusShipped:
		verb = "shipped"
	case models.OrderStatusDelivered:
		verb = "delivered"
	default:
		verb = "updated to " + status
	}
	return "Your order #" + formatOrderRef(order) + " has been " + verb
}

// formatOrderRef prefers the per-user display number over the global id
func formatOrderRef(order *models.Order) string {
	if order.UserOrderNumber > 0 {
		return strconv.Itoa(order.UserOrderNumber)
	}
	return strconv.FormatInt(order.ID, 10)
}
