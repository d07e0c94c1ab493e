package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeEmail NotificationType = "email"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "PENDING"
	NotificationStatusSent    NotificationStatus = "SENT"
	NotificationStatusFailed  NotificationStatus = "FAILED"
)

type Notification struct {
	ID        uuid.UUID          `json:"id"`
	UserID    uuid.UUID          `json:"user_id"`
	OrderID   uuid.UUID          `json:"order_id,omitempty"`
	Type      NotificationType   `json:"type"`
	Status    NotificationStatus `json:"status"`
	Subject   string             `json:"subject"`
	Body      string             `json:"body"`
	Recipient string             `json:"recipient"`
	CreatedAt time.Time          `json:"created_at"`
	SentAt    *time.Time         `json:"sent_at,omitempty"`
}

func NewNotification(userID, orderID uuid.UUID, subject, body, recipient string) *Notification {
	return &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		OrderID:   orderID,
		Type:      NotificationTypeEmail,
		Status:    NotificationStatusPending,
		Subject:   subject,
		Body:      body,
		Recipient: recipient,
		CreatedAt: time.Now(),
	}
}

func (n *Notification) MarkAsSent() {
	n.Status = NotificationStatusSent
	now := time.Now()
	n.SentAt = &now
}

func (n *Notification) MarkAsFailed() {
	n.Status = NotificationStatusFailed
}
