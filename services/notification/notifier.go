package notification

import (
	"context"
	"fmt"

	"phonedesk/models"
	"phonedesk/services/transaction"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// Sender is the part of the FCM client used here.
type Sender interface {
	Send(ctx context.Context, msg *messaging.Message) (string, error)
}

// NotificationService tells a business owner about a transaction taken by phone.
type NotificationService interface {
	NotifyTransaction(ctx context.Context, b models.Business, rec transaction.Record) error
}

// FCMNotificationService pushes to the owner's device.
type FCMNotificationService struct {
	sender Sender
	logger *zap.Logger
}

func NewFCMNotificationService(sender Sender, logger *zap.Logger) (*FCMNotificationService, error) {
	if sender == nil {
		return nil, fmt.Errorf("notification service initialization error: FCM client is nil")
	}
	return &FCMNotificationService{sender: sender, logger: logger}, nil
}

// NotifyTransaction sends a push. Businesses without a device token are skipped.
func (s *FCMNotificationService) NotifyTransaction(ctx context.Context, b models.Business, rec transaction.Record) error {
	if b.FCMToken == "" {
		return nil
	}
	title, body, data := Message(rec)
	if title == "" {
		return nil
	}
	data["businessId"] = b.ID

	msg := &messaging.Message{
		Token: b.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	id, err := s.sender.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("NotifyTransaction: failed to send FCM message: %w", err)
	}
	s.logger.Debug("Pushed transaction", zap.String("businessID", b.ID), zap.String("messageID", id))
	return nil
}

// Message builds the push title, body and data for a record.
func Message(rec transaction.Record) (title, body string, data map[string]string) {
	switch {
	case rec.Appointment != nil:
		a := rec.Appointment
		return "New appointment",
			fmt.Sprintf("%s for %s on %s", a.ServiceName, a.Name, a.Start.Format("Mon 2 Jan 15:04")),
			map[string]string{"type": "appointment", "id": a.ID, "callId": a.CallID}
	case rec.Order != nil:
		o := rec.Order
		return "New order",
			fmt.Sprintf("%d item(s) for %s, %s, €%.2f", itemCount(o.Lines), o.Name, o.Fulfillment, o.Total),
			map[string]string{"type": "order", "id": o.ID, "callId": o.CallID}
	}
	return "", "", nil
}

func itemCount(lines []models.OrderLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// NoopNotificationService is used when push is not configured.
type NoopNotificationService struct{}

func (NoopNotificationService) NotifyTransaction(context.Context, models.Business, transaction.Record) error {
	return nil
}
