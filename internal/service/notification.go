package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationPaymentCreated   NotificationType = "PAYMENT_CREATED"
	NotificationPaymentConfirmed NotificationType = "PAYMENT_CONFIRMED"
	NotificationPaymentCancelled NotificationType = "PAYMENT_CANCELLED"
)

// Notification represents a notification to be sent.
type Notification struct {
	Type        NotificationType
	RecipientID string
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}

// NotificationService handles notification delivery to clinic customers.
type NotificationService struct {
	// In a real system, this would hold a push/SMS/email client.
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyPaymentConfirmed notifies the customer of a confirmed payment.
func (s *NotificationService) NotifyPaymentConfirmed(ctx context.Context, payment *domain.Payment) error {
	return s.send(ctx, Notification{
		Type:        NotificationPaymentConfirmed,
		RecipientID: payment.CustomerID,
		Title:       "Payment Confirmed",
		Message:     fmt.Sprintf("Payment of %d VND was received", payment.Amount),
		Data: map[string]interface{}{
			"payment_id": payment.ID,
			"line_id":    payment.LineID,
			"amount":     payment.Amount,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyPaymentCancelled notifies the customer of a cancelled payment.
func (s *NotificationService) NotifyPaymentCancelled(ctx context.Context, payment *domain.Payment) error {
	return s.send(ctx, Notification{
		Type:        NotificationPaymentCancelled,
		RecipientID: payment.CustomerID,
		Title:       "Payment Cancelled",
		Message:     fmt.Sprintf("Payment of %d VND was cancelled. You can retry from the appointment screen.", payment.Amount),
		Data: map[string]interface{}{
			"payment_id": payment.ID,
			"line_id":    payment.LineID,
			"amount":     payment.Amount,
		},
		CreatedAt: time.Now(),
	})
}

// send delivers a notification (mock implementation).
func (s *NotificationService) send(ctx context.Context, notification Notification) error {
	log.Printf("[NOTIFICATION] Type=%s, Recipient=%s, Title=%s, Message=%s",
		notification.Type, notification.RecipientID, notification.Title, notification.Message)

	return nil
}
