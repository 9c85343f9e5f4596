package store

import (
	"context"
	"database/sql"
	"fmt"

	"shop-backend/internal/models"
)

// CreateOrder persists a new order together with its line items in one
// transaction. When the order has an owning user, user_order_number is
// assigned from a per-user atomic counter so concurrent placements for the
// same user can never observe duplicate numbers.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) ([]models.OrderItem, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if order.UserID != nil {
		err = tx.GetContext(ctx, &order.UserOrderNumber, `
			INSERT INTO user_order_counters (user_id, next_number)
			VALUES ($1, 1)
			ON CONFLICT (user_id)
			DO UPDATE SET next_number = user_order_counters.next_number + 1
			RETURNING next_number`, *order.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to assign user order number: %w", err)
		}
	}

	query := `
		INSERT INTO orders (user_id, amount, status, delivery_info, items_data, user_order_number)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRowxContext(ctx, query,
		order.UserID, order.Amount, order.Status, order.DeliveryInfo,
		order.ItemsData, order.UserOrderNumber,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	created := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		item.OrderID = order.ID
		err = tx.GetContext(ctx, &item.ID, `
			INSERT INTO order_items (order_id, product_id, title, quantity, price, image_url)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			item.OrderID, item.ProductID, item.Title, item.Quantity, item.Price, item.ImageURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
		created = append(created, item)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return created, nil
}

// GetOrderByID retrieves an order by ID. Returns (nil, nil) when not found.
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus persists a new order status
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		status, orderID)
	return err
}

// DeleteOrder removes an order; its items cascade with it
func (s *Store) DeleteOrder(ctx context.Context, orderID int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", orderID)
	return err
}

// GetOrdersByUserID retrieves orders for a user, newest first
func (s *Store) GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return orders, err
}

// GetOrders retrieves all orders, oldest first (admin listing)
func (s *Store) GetOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders, "SELECT * FROM orders ORDER BY id")
	return orders, err
}

// GetOrderItemsByOrderID retrieves all items for an order
func (s *Store) GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	return items, err
}
