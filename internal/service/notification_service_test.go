package service

import (
	"context"
	"errors"
	"testing"

	"shop-backend/internal/models"
	"shop-backend/internal/push"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotificationStore struct {
	notifications []models.Notification
	tokens        map[int64][]string
	nextID        int64
	tokensErr     error
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{tokens: make(map[int64][]string)}
}

func (f *fakeNotificationStore) CreateNotification(_ context.Context, n *models.Notification) error {
	f.nextID++
	n.ID = f.nextID
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeNotificationStore) GetNotificationsByUserID(_ context.Context, userID int64) ([]models.Notification, error) {
	var out []models.Notification
	for i := len(f.notifications) - 1; i >= 0; i-- {
		if f.notifications[i].UserID == userID {
			out = append(out, f.notifications[i])
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) MarkNotificationRead(_ context.Context, notificationID, userID int64) (bool, error) {
	for i := range f.notifications {
		if f.notifications[i].ID == notificationID && f.notifications[i].UserID == userID {
			f.notifications[i].IsRead = true
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNotificationStore) GetDeviceTokens(_ context.Context, userID int64) ([]string, error) {
	if f.tokensErr != nil {
		return nil, f.tokensErr
	}
	return f.tokens[userID], nil
}

func (f *fakeNotificationStore) RegisterDeviceToken(_ context.Context, userID int64, token string) error {
	for _, t := range f.tokens[userID] {
		if t == token {
			return nil
		}
	}
	f.tokens[userID] = append(f.tokens[userID], token)
	return nil
}

func (f *fakeNotificationStore) RemoveDeviceToken(_ context.Context, userID int64, token string) error {
	kept := f.tokens[userID][:0]
	for _, t := range f.tokens[userID] {
		if t != token {
			kept = append(kept, t)
		}
	}
	f.tokens[userID] = kept
	return nil
}

type sentPush struct {
	tokens []string
	title  string
	body   string
	data   map[string]string
}

type fakeSender struct {
	sent   []sentPush
	result *push.Result
	err    error
}

func (f *fakeSender) SendMulticast(_ context.Context, tokens []string, title, body string, data map[string]string) (*push.Result, error) {
	f.sent = append(f.sent, sentPush{tokens: tokens, title: title, body: body, data: data})
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &push.Result{SuccessCount: len(tokens)}, nil
}

func TestNotifyPersistsAndPushes(t *testing.T) {
	store := newFakeNotificationStore()
	store.tokens[1] = []string{"tok-a", "tok-b"}
	sender := &fakeSender{}
	svc := NewNotificationService(store, sender)

	orderID := int64(7)
	n, err := svc.Notify(context.Background(), 1, "Order Status Updated", "Your order #3 has been shipped", &orderID, models.NotificationTypeOrderStatus)
	require.NoError(t, err)
	assert.NotZero(t, n.ID)

	require.Len(t, store.notifications, 1)
	assert.Equal(t, models.NotificationTypeOrderStatus, store.notifications[0].Type)

	require.Len(t, sender.sent, 1)
	assert.ElementsMatch(t, []string{"tok-a", "tok-b"}, sender.sent[0].tokens)
	assert.Equal(t, "Order Status Updated", sender.sent[0].title)
	assert.Equal(t, "7", sender.sent[0].data["orderId"])
	assert.Equal(t, models.NotificationTypeOrderStatus, sender.sent[0].data["type"])
}

func TestNotifyNoTokensSkipsPush(t *testing.T) {
	store := newFakeNotificationStore()
	sender := &fakeSender{}
	svc := NewNotificationService(store, sender)

	_, err := svc.Notify(context.Background(), 2, "Hello", "World", nil, models.NotificationTypeSystem)
	require.NoError(t, err)

	assert.Len(t, store.notifications, 1)
	assert.Empty(t, sender.sent)
}

func TestNotifyPushFailureDoesNotFailCall(t *testing.T) {
	store := newFakeNotificationStore()
	store.tokens[3] = []string{"tok-c"}
	sender := &fakeSender{err: errors.New("fcm unavailable")}
	svc := NewNotificationService(store, sender)

	n, err := svc.Notify(context.Background(), 3, "Hello", "World", nil, models.NotificationTypeSystem)
	require.NoError(t, err)
	assert.NotZero(t, n.ID)
	assert.Len(t, store.notifications, 1)
}

func TestNotifyTokenListErrorDoesNotFailCall(t *testing.T) {
	store := newFakeNotificationStore()
	store.tokensErr = errors.New("db down")
	sender := &fakeSender{}
	svc := NewNotificationService(store, sender)

	_, err := svc.Notify(context.Background(), 3, "Hello", "World", nil, models.NotificationTypeSystem)
	require.NoError(t, err)
	assert.Len(t, store.notifications, 1)
	assert.Empty(t, sender.sent)
}

func TestNotifyNilSenderIsDegradedNotBroken(t *testing.T) {
	store := newFakeNotificationStore()
	store.tokens[4] = []string{"tok-d"}
	svc := NewNotificationService(store, nil)

	n, err := svc.Notify(context.Background(), 4, "Hello", "World", nil, models.NotificationTypeSystem)
	require.NoError(t, err)
	assert.NotZero(t, n.ID)
	assert.Len(t, store.notifications, 1)
}

func TestCreateForUserValidation(t *testing.T) {
	store := newFakeNotificationStore()
	svc := NewNotificationService(store, nil)
	ctx := context.Background()

	_, err := svc.CreateForUser(ctx, 1, "", "body", nil)
	assert.True(t, IsValidation(err))

	_, err = svc.CreateForUser(ctx, 1, "title", "", nil)
	assert.True(t, IsValidation(err))

	n, err := svc.CreateForUser(ctx, 1, "title", "body", nil)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationTypeSystem, n.Type)
}

func TestCreateForUserOptionalOrderID(t *testing.T) {
	store := newFakeNotificationStore()
	svc := NewNotificationService(store, nil)

	orderID := int64(42)
	n, err := svc.CreateForUser(context.Background(), 1, "title", "body", &orderID)
	require.NoError(t, err)
	require.NotNil(t, n.OrderID)
	assert.Equal(t, int64(42), *n.OrderID)
}

func TestMarkReadEnforcesOwnership(t *testing.T) {
	store := newFakeNotificationStore()
	svc := NewNotificationService(store, nil)
	ctx := context.Background()

	n, err := svc.Notify(ctx, 1, "title", "body", nil, models.NotificationTypeSystem)
	require.NoError(t, err)

	err = svc.MarkRead(ctx, n.ID, 2)
	assert.True(t, IsNotFound(err))

	require.NoError(t, svc.MarkRead(ctx, n.ID, 1))
	assert.True(t, store.notifications[0].IsRead)
}

func TestTokenRegistration(t *testing.T) {
	store := newFakeNotificationStore()
	svc := NewNotificationService(store, nil)
	ctx := context.Background()

	assert.True(t, IsValidation(svc.RegisterToken(ctx, 1, "")))
	assert.True(t, IsValidation(svc.RemoveToken(ctx, 1, "")))

	require.NoError(t, svc.RegisterToken(ctx, 1, "tok-x"))
	require.NoError(t, svc.RegisterToken(ctx, 1, "tok-x"))
	assert.Len(t, store.tokens[1], 1)

	require.NoError(t, svc.RemoveToken(ctx, 1, "tok-x"))
	assert.Empty(t, store.tokens[1])
}
