package service

import (
	"context"
	"strconv"

	"shop-backend/internal/models"
	"shop-backend/internal/push"
	"shop-backend/internal/util"

	"go.uber.org/zap"
)

// NotificationStore is the slice of the store notification dispatch needs
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	GetNotificationsByUserID(ctx context.Context, userID int64) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID, userID int64) (bool, error)
	GetDeviceTokens(ctx context.Context, userID int64) ([]string, error)
	RegisterDeviceToken(ctx context.Context, userID int64, token string) error
	RemoveDeviceToken(ctx context.Context, userID int64, token string) error
}

// NotificationService persists notification records and forwards them to the
// push transport. The stored row is the durable source of truth; push is a
// best-effort enhancement and its failures never reach the caller.
type NotificationService struct {
	store  NotificationStore
	sender push.Sender
	logger *zap.Logger
}

// NewNotificationService creates a new notification service. A nil sender
// runs the service in degraded no-push mode.
func NewNotificationService(store NotificationStore, sender push.Sender) *NotificationService {
	return &NotificationService{
		store:  store,
		sender: sender,
		logger: util.GetLogger(),
	}
}

// Notify persists a notification for the user and attempts push delivery
// to every registered device token
func (s *NotificationService) Notify(ctx context.Context, userID int64, title, message string, orderID *int64, notificationType string) (*models.Notification, error) {
	ctx, span := util.StartSpan(ctx, "NotificationService.Notify")
	defer span.End()

	n := &models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		OrderID: orderID,
		Type:    notificationType,
	}

	if err := s.store.CreateNotification(ctx, n); err != nil {
		return nil, err
	}
	util.NotificationsCreatedTotal.WithLabelValues(notificationType).Inc()

	s.dispatchPush(ctx, n)
	return n, nil
}

// dispatchPush forwards the notification to the push transport. Every failure
// path logs and returns; the persisted row already succeeded.
func (s *NotificationService) dispatchPush(ctx context.Context, n *models.Notification) {
	if s.sender == nil {
		s.logger.Debug("Push sender not configured, skipping dispatch",
			zap.Int64("notification_id", n.ID))
		return
	}

	tokens, err := s.store.GetDeviceTokens(ctx, n.UserID)
	if err != nil {
		s.logger.Error("Failed to list device tokens",
			zap.Int64("user_id", n.UserID),
			zap.Error(err))
		return
	}
	if len(tokens) == 0 {
		s.logger.Info("No device tokens registered for user",
			zap.Int64("user_id", n.UserID))
		return
	}

	data := map[string]string{
		"notificationId": strconv.FormatInt(n.ID, 10),
		"userId":         strconv.FormatInt(n.UserID, 10),
		"type":           n.Type,
	}
	if n.OrderID != nil {
		data["orderId"] = strconv.FormatInt(*n.OrderID, 10)
	}

	result, err := s.sender.SendMulticast(ctx, tokens, n.Title, n.Message, data)
	if err != nil {
		util.PushFailedTotal.Add(float64(len(tokens)))
		s.logger.Error("Push multicast failed",
			zap.Int64("notification_id", n.ID),
			zap.Int("tokens", len(tokens)),
			zap.Error(err))
		return
	}

	util.PushSentTotal.Add(float64(result.SuccessCount))
	util.PushFailedTotal.Add(float64(result.FailureCount))

	for token, tokenErr := range result.TokenErrors {
		s.logger.Warn("Push delivery failed for token",
			zap.Int64("notification_id", n.ID),
			zap.String("token", truncateToken(token)),
			zap.Error(tokenErr))
	}

	s.logger.Info("Push dispatched",
		zap.Int64("notification_id", n.ID),
		zap.Int("success", result.SuccessCount),
		zap.Int("failure", result.FailureCount))
}

// CreateForUser creates a notification through the API surface
func (s *NotificationService) CreateForUser(ctx context.Context, userID int64, title, message string, orderID *int64) (*models.Notification, error) {
	if title == "" || message == "" {
		return nil, NewValidationError("title and message are required")
	}
	return s.Notify(ctx, userID, title, message, orderID, models.NotificationTypeSystem)
}

// ListForUser returns a user's notifications, newest first
func (s *NotificationService) ListForUser(ctx context.Context, userID int64) ([]models.Notification, error) {
	return s.store.GetNotificationsByUserID(ctx, userID)
}

// MarkRead marks a notification as read; the row must belong to the user
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID int64) error {
	found, err := s.store.MarkNotificationRead(ctx, notificationID, userID)
	if err != nil {
		return err
	}
	if !found {
		return NewNotFoundError("notification not found: %d", notificationID)
	}
	return nil
}

// RegisterToken stores a device token for push delivery
func (s *NotificationService) RegisterToken(ctx context.Context, userID int64, token string) error {
	if token == "" {
		return NewValidationError("token is required")
	}
	return s.store.RegisterDeviceToken(ctx, userID, token)
}

// RemoveToken deletes a device token registration
func (s *NotificationService) RemoveToken(ctx context.Context, userID int64, token string) error {
	if token == "" {
		return NewValidationError("token is required")
	}
	return s.store.RemoveDeviceToken(ctx, userID, token)
}

func truncateToken(token string) string {
	if len(token) <= 10 {
		return token
	}
	return token[:10] + "..."
}
