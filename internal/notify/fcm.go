package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/mytrainer/mytrainer-api/internal/models"
)

// PushTransport delivers notifications through Firebase Cloud Messaging.
type PushTransport struct {
	client *messaging.Client
	logger *zap.Logger
}

// NewPushTransport initializes the Firebase app from a service account
// credentials file and returns the push transport.
func NewPushTransport(ctx context.Context, credentialsFile string, logger *zap.Logger) (*PushTransport, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase messaging: %w", err)
	}
	return &PushTransport{client: client, logger: logger}, nil
}

// Name implements Transport.
func (t *PushTransport) Name() string {
	return "push"
}

// Available implements Transport. Push needs a registered device token.
func (t *PushTransport) Available(n Notification) bool {
	return n.PushEnabled && n.DeviceToken != ""
}

// Send implements Transport.
func (t *PushTransport) Send(ctx context.Context, n Notification) error {
	data := map[string]string{
		"type":      string(n.Category),
		"userId":    n.UserID.String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if n.Activity != nil {
		if payload, err := json.Marshal(n.Activity); err == nil {
			data["activity"] = string(payload)
		}
	}

	msg := &messaging.Message{
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Message,
		},
		Data:  data,
		Token: n.DeviceToken,
	}

	messageID, err := t.client.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send push notification: %w", err)
	}

	if t.logger != nil {
		t.logger.Info("push_notification_sent",
			zap.String("user_id", n.UserID.String()),
			zap.String("category", string(n.Category)),
			zap.String("message_id", messageID),
		)
	}
	return nil
}

// BroadcastResult summarizes a multicast send.
type BroadcastResult struct {
	SuccessCount int `json:"successCount"`
	FailureCount int `json:"failureCount"`
}

// Broadcast sends one message to every registered device token. Individual
// token failures count toward FailureCount without failing the broadcast.
func (t *PushTransport) Broadcast(ctx context.Context, tokens []string, title, message string) (*BroadcastResult, error) {
	if title == "" {
		title = TitleFor(models.CategoryBroadcast)
	}
	if len(tokens) == 0 {
		return &BroadcastResult{}, nil
	}

	msg := &messaging.MulticastMessage{
		Notification: &messaging.Notification{
			Title: title,
			Body:  message,
		},
		Data: map[string]string{
			"type":      string(models.CategoryBroadcast),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
		Tokens: tokens,
	}

	resp, err := t.client.SendEachForMulticast(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("failed to send broadcast: %w", err)
	}

	if t.logger != nil {
		t.logger.Info("broadcast_sent",
			zap.Int("success_count", resp.SuccessCount),
			zap.Int("failure_count", resp.FailureCount),
			zap.Int("token_count", len(tokens)),
		)
	}
	return &BroadcastResult{
		SuccessCount: resp.SuccessCount,
		FailureCount: resp.FailureCount,
	}, nil
}
