package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/shif13/shinab/internal/domain"
	"github.com/shif13/shinab/internal/mailer"
	"github.com/shif13/shinab/internal/messaging"
	"github.com/shif13/shinab/internal/repository"
)

// NotificationService turns shop events into persisted, delivered emails.
// It runs off the request path: delivery failures are recorded and logged,
// never propagated back to the event source.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	sender           mailer.Sender
}

func NewNotificationService(notificationRepo repository.NotificationRepository, sender mailer.Sender) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		sender:           sender,
	}
}

// RoutingKeys lists the event bindings this worker consumes.
func (s *NotificationService) RoutingKeys() []string {
	return []string{
		"shop.auth-service.user.registered",
		"shop.order-service.order.created",
		"shop.order-service.order.cancelled",
		"shop.payment-service.order.paid",
	}
}

// HandleEvent builds and sends the email for one event. The returned
// error acks/nacks the delivery: only decode-level problems are worth a
// redelivery, so send failures return nil after being recorded.
func (s *NotificationService) HandleEvent(event messaging.Event) error {
	recipient, subject, body, err := s.composeMessage(event)
	if err != nil {
		return err
	}
	if recipient == "" {
		log.Printf("Notification skipped, no recipient: %s", event.EventType)
		return nil
	}

	ctx := context.Background()

	notification := domain.NewNotification(event.UserID, event.OrderID, subject, body, recipient)
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return fmt.Errorf("notification persist error: %w", err)
	}

	if err := s.sender.Send(recipient, subject, body); err != nil {
		log.Printf("Notification delivery failed (dropped): %v", err)
		notification.MarkAsFailed()
	} else {
		notification.MarkAsSent()
	}

	if err := s.notificationRepo.Update(ctx, notification); err != nil {
		log.Printf("Notification status update error: %v", err)
	}

	return nil
}

func (s *NotificationService) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.Notification, error) {
	return s.notificationRepo.ListByOrderID(ctx, orderID)
}

func (s *NotificationService) composeMessage(event messaging.Event) (recipient, subject, body string, err error) {
	raw, err := json.Marshal(event.Payload)
	if err != nil {
		return "", "", "", fmt.Errorf("payload re-encode error: %w", err)
	}

	switch event.EventType {
	case messaging.UserRegisteredEvent:
		var p messaging.UserRegisteredPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return "", "", "", fmt.Errorf("payload decode error: %w", err)
		}
		subject = "Welcome to Shina Boutique"
		body = fmt.Sprintf(
			"<h1>Welcome to Shina Boutique!</h1><p>Hi %s,</p>"+
				"<p>Thank you for joining Shina Boutique. We're excited to have you!</p>",
			p.FirstName)
		return p.Email, subject, body, nil

	case messaging.OrderCreatedEvent:
		var p messaging.OrderCreatedPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return "", "", "", fmt.Errorf("payload decode error: %w", err)
		}
		subject = fmt.Sprintf("Order Confirmation - %s", p.OrderNumber)
		body = fmt.Sprintf(
			"<h1>Order Confirmation</h1><p>Hi %s,</p>"+
				"<p>Your order #%s has been confirmed!</p><p>Total: ₹%.2f</p>"+
				"<p>We'll send you another email when your order ships.</p>",
			p.FirstName, p.OrderNumber, p.Total)
		return p.Email, subject, body, nil

	case messaging.OrderPaidEvent:
		var p messaging.OrderPaidPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return "", "", "", fmt.Errorf("payload decode error: %w", err)
		}
		subject = fmt.Sprintf("Payment Received - %s", p.OrderNumber)
		body = fmt.Sprintf(
			"<h1>Payment Received</h1><p>Hi %s,</p>"+
				"<p>We received your payment of ₹%.2f for order #%s.</p>"+
				"<p>Your order is now being processed.</p>",
			p.FirstName, p.Total, p.OrderNumber)
		return p.Email, subject, body, nil

	case messaging.OrderCancelledEvent:
		var p messaging.OrderCancelledPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return "", "", "", fmt.Errorf("payload decode error: %w", err)
		}
		subject = fmt.Sprintf("Order Cancelled - %s", p.OrderNumber)
		body = fmt.Sprintf(
			"<h1>Order Cancelled</h1><p>Hi %s,</p>"+
				"<p>Your order #%s has been cancelled.</p>",
			p.FirstName, p.OrderNumber)
		return p.Email, subject, body, nil

	default:
		log.Printf("Unhandled notification event type %s", event.EventType)
		return "", "", "", nil
	}
}
