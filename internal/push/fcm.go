package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Result summarizes a multicast delivery attempt
type Result struct {
	SuccessCount int
	FailureCount int
	// TokenErrors maps failed device tokens to their delivery error
	TokenErrors map[string]error
}

// Sender delivers a notification payload to a set of device tokens
type Sender interface {
	SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) (*Result, error)
}

// FCMSender sends push notifications through Firebase Cloud Messaging
type FCMSender struct {
	client *messaging.Client
}

// NewFCMSender initializes the FCM client. When credentialsFile is empty the
// default application credentials are used.
func NewFCMSender(ctx context.Context, credentialsFile string) (*FCMSender, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize fcm client: %w", err)
	}

	return &FCMSender{client: client}, nil
}

// SendMulticast delivers the payload to every token, collecting per-token
// failures instead of aborting on the first one
func (s *FCMSender) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) (*Result, error) {
	msg := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}

	br, err := s.client.SendEachForMulticast(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("fcm multicast send failed: %w", err)
	}

	result := &Result{
		SuccessCount: br.SuccessCount,
		FailureCount: br.FailureCount,
		TokenErrors:  make(map[string]error),
	}
	for i, resp := range br.Responses {
		if !resp.Success && i < len(tokens) {
			result.TokenErrors[tokens[i]] = resp.Error
		}
	}
	return result, nil
}
