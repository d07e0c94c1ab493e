package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shif13/shinab/internal/domain"
	"github.com/shif13/shinab/internal/repository"
)

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

// Create writes the order, its item snapshots and the stock decrements as a
// single transaction, then clears the buyer's cart inside the same
// transaction. The stock decrement is conditional on sufficiency, so two
// racing orders for the last unit cannot both commit.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	addressJSON, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("shipping address serialization error: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, user_id, order_number, shipping_address, payment_method,
			payment_status, order_status, subtotal, shipping_cost, tax, total,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		order.ID,
		order.UserID,
		order.OrderNumber,
		addressJSON,
		order.PaymentMethod,
		order.PaymentStatus,
		order.OrderStatus,
		order.Subtotal,
		order.ShippingCost,
		order.Tax,
		order.Total,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("order insert error: %w", err)
	}

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (
				id, order_id, product_id, name, price, image, quantity, size, color
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Name,
			item.Price,
			item.Image,
			item.Quantity,
			item.Size,
			item.Color,
		)
		if err != nil {
			return fmt.Errorf("order item insert error: %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $2, updated_at = NOW()
			WHERE id = $1 AND stock >= $2
		`, item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("stock decrement error: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("stock decrement result error: %w", err)
		}
		if affected == 0 {
			// Rolled back by the deferred Rollback: either the product
			// vanished or a concurrent order took the remaining stock.
			return fmt.Errorf("product %s: %w", item.ProductID, domain.ErrInsufficientStock)
		}
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM cart_items
		WHERE cart_id IN (SELECT id FROM carts WHERE user_id = $1)
	`, order.UserID)
	if err != nil {
		return fmt.Errorf("cart clear error: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("order commit error: %w", err)
	}

	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := r.scanOrder(r.db.QueryRowContext(ctx, selectOrder+` WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetByPaymentIntentID(ctx context.Context, intentID string) (*domain.Order, error) {
	order, err := r.scanOrder(r.db.QueryRowContext(ctx, selectOrder+` WHERE payment_intent_id = $1`, intentID))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, selectOrder+` WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("orders query error: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("orders iteration error: %w", err)
	}

	for _, order := range orders {
		if err := r.loadItems(ctx, order); err != nil {
			return nil, err
		}
	}

	return orders, nil
}

func (r *orderRepository) SetPaymentIntentID(ctx context.Context, orderID uuid.UUID, intentID string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET payment_intent_id = $2, updated_at = NOW() WHERE id = $1
	`, orderID, intentID)
	if err != nil {
		return fmt.Errorf("payment intent update error: %w", err)
	}
	return requireAffected(result, domain.ErrOrderNotFound)
}

// MarkPaid is the single settlement path shared by the verify endpoint and
// the webhook. The WHERE guard makes repeated application a no-op; the
// returned bool tells the caller whether this invocation performed the
// transition.
func (r *orderRepository) MarkPaid(ctx context.Context, orderID uuid.UUID, paidAt time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET payment_status = $2, order_status = $3, paid_at = $4, updated_at = NOW()
		WHERE id = $1 AND payment_status <> $2
	`, orderID, domain.PaymentStatusPaid, domain.OrderStatusProcessing, paidAt)
	if err != nil {
		return false, fmt.Errorf("mark paid error: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark paid result error: %w", err)
	}
	return affected > 0, nil
}

// MarkPaymentFailed records a failed payment attempt. A PAID order is left
// untouched and reported as success, so a stale failure event arriving
// after settlement is acknowledged instead of redelivered.
func (r *orderRepository) MarkPaymentFailed(ctx context.Context, orderID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET payment_status = $2, updated_at = NOW()
		WHERE id = $1 AND payment_status <> $3
	`, orderID, domain.PaymentStatusFailed, domain.PaymentStatusPaid)
	if err != nil {
		return fmt.Errorf("mark payment failed error: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark payment failed result error: %w", err)
	}
	if affected == 0 {
		// Zero rows is either a missing order or the PAID guard holding.
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
			return fmt.Errorf("order lookup error: %w", err)
		}
		if !exists {
			return domain.ErrOrderNotFound
		}
	}
	return nil
}

// Cancel transitions the order to CANCELLED and releases each line item's
// stock, all in one transaction. The conditional status update enforces
// that only PENDING or PROCESSING orders are cancellable.
func (r *orderRepository) Cancel(ctx context.Context, orderID uuid.UUID, cancelledAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET order_status = $2, cancelled_at = $3, updated_at = NOW()
		WHERE id = $1 AND order_status IN ($4, $5)
	`, orderID, domain.OrderStatusCancelled, cancelledAt,
		domain.OrderStatusPending, domain.OrderStatusProcessing)
	if err != nil {
		return fmt.Errorf("order cancel error: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("order cancel result error: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
			return fmt.Errorf("order lookup error: %w", err)
		}
		if !exists {
			return domain.ErrOrderNotFound
		}
		return domain.ErrInvalidState
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE products p
		SET stock = p.stock + i.quantity, updated_at = NOW()
		FROM order_items i
		WHERE i.order_id = $1 AND i.product_id = p.id
	`, orderID)
	if err != nil {
		return fmt.Errorf("stock release error: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("cancel commit error: %w", err)
	}

	return nil
}

const selectOrder = `
	SELECT id, user_id, order_number, shipping_address, payment_method,
		   payment_status, order_status, subtotal, shipping_cost, tax, total,
		   payment_intent_id, created_at, updated_at,
		   paid_at, shipped_at, delivered_at, cancelled_at
	FROM orders
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *orderRepository) scanOrder(row rowScanner) (*domain.Order, error) {
	order := &domain.Order{}
	var addressJSON []byte
	var intentID sql.NullString

	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.OrderNumber,
		&addressJSON,
		&order.PaymentMethod,
		&order.PaymentStatus,
		&order.OrderStatus,
		&order.Subtotal,
		&order.ShippingCost,
		&order.Tax,
		&order.Total,
		&intentID,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.PaidAt,
		&order.ShippedAt,
		&order.DeliveredAt,
		&order.CancelledAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("order scan error: %w", err)
	}

	if err := json.Unmarshal(addressJSON, &order.ShippingAddress); err != nil {
		return nil, fmt.Errorf("shipping address deserialization error: %w", err)
	}
	if intentID.Valid {
		order.PaymentIntentID = intentID.String
	}

	return order, nil
}

func (r *orderRepository) loadItems(ctx context.Context, order *domain.Order) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, name, price, image, quantity, size, color
		FROM order_items
		WHERE order_id = $1
	`, order.ID)
	if err != nil {
		return fmt.Errorf("order items query error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Name,
			&item.Price,
			&item.Image,
			&item.Quantity,
			&item.Size,
			&item.Color,
		)
		if err != nil {
			return fmt.Errorf("order item scan error: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

func requireAffected(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
