package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/shif13/shinab/internal/domain"
	"github.com/shif13/shinab/internal/repository"
)

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	var orderID interface{}
	if n.OrderID != uuid.Nil {
		orderID = n.OrderID
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, order_id, type, status, subject, body, recipient, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, n.ID, n.UserID, orderID, n.Type, n.Status, n.Subject, n.Body, n.Recipient, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("notification insert error: %w", err)
	}
	return nil
}

func (r *notificationRepository) Update(ctx context.Context, n *domain.Notification) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET status = $2, sent_at = $3 WHERE id = $1
	`, n.ID, n.Status, n.SentAt)
	if err != nil {
		return fmt.Errorf("notification update error: %w", err)
	}
	return nil
}

func (r *notificationRepository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, order_id, type, status, subject, body, recipient, created_at, sent_at
		FROM notifications
		WHERE order_id = $1
		ORDER BY created_at
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("notifications query error: %w", err)
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		n := &domain.Notification{}
		var oid sql.NullString
		err := rows.Scan(&n.ID, &n.UserID, &oid, &n.Type, &n.Status,
			&n.Subject, &n.Body, &n.Recipient, &n.CreatedAt, &n.SentAt)
		if err != nil {
			return nil, fmt.Errorf("notification scan error: %w", err)
		}
		if oid.Valid {
			if parsed, err := uuid.Parse(oid.String); err == nil {
				n.OrderID = parsed
			}
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
