package notification

import (
	"context"
	"errors"
	"fmt"

	"notewise/utils"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// ErrTokenNotRegistered marks a delivery failure that can never succeed: the
// client registration token has been invalidated (app uninstalled, token
// rotated). Callers delete the reminder instead of retrying.
var ErrTokenNotRegistered = errors.New("push token no longer registered")

// NotificationService defines methods for sending FCM pushes.
type NotificationService interface {
	SendPush(ctx context.Context, token, title, body string, data map[string]string) error
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct{}

func NewDefaultNotificationService() *DefaultNotificationService {
	return &DefaultNotificationService{}
}

// SendPush delivers a notification payload to an opaque FCM token.
func (s *DefaultNotificationService) SendPush(
	ctx context.Context,
	token, title, body string,
	data map[string]string,
) error {
	if token == "" {
		return fmt.Errorf("SendPush: %w", ErrTokenNotRegistered)
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	response, err := utils.FCMClient.Send(ctx, msg)
	if err != nil {
		if messaging.IsRegistrationTokenNotRegistered(err) {
			return fmt.Errorf("SendPush: %w: %v", ErrTokenNotRegistered, err)
		}
		return fmt.Errorf("SendPush: failed to send FCM message: %w", err)
	}

	utils.GetLogger().Debug("SendPush: message delivered", zap.String("response", response))
	return nil
}
