package store

import (
	"context"

	"shop-backend/internal/models"
)

// CreateNotification persists a notification row
func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, title, message, order_id, is_read, notification_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	return s.db.QueryRowxContext(ctx, query,
		n.UserID, n.Title, n.Message, n.OrderID, n.IsRead, n.Type,
	).Scan(&n.ID, &n.CreatedAt)
}

// GetNotificationsByUserID retrieves a user's notifications, newest first
func (s *Store) GetNotificationsByUserID(ctx context.Context, userID int64) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.SelectContext(ctx, &notifications,
		"SELECT * FROM notifications WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return notifications, err
}

// MarkNotificationRead sets is_read on a notification owned by the user.
// Returns false when no matching row exists.
func (s *Store) MarkNotificationRead(ctx context.Context, notificationID, userID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2",
		notificationID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetDeviceTokens lists the push tokens currently registered for a user
func (s *Store) GetDeviceTokens(ctx context.Context, userID int64) ([]string, error) {
	var tokens []string
	err := s.db.SelectContext(ctx, &tokens,
		"SELECT token FROM device_tokens WHERE user_id = $1", userID)
	return tokens, err
}

// RegisterDeviceToken stores a push token for a user; duplicates are ignored
func (s *Store) RegisterDeviceToken(ctx context.Context, userID int64, token string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO device_tokens (user_id, token) VALUES ($1, $2)
		ON CONFLICT (user_id, token) DO NOTHING`,
		userID, token)
	return err
}

// RemoveDeviceToken deletes a push token registration for a user
func (s *Store) RemoveDeviceToken(ctx context.Context, userID int64, token string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM device_tokens WHERE user_id = $1 AND token = $2",
		userID, token)
	return err
}
