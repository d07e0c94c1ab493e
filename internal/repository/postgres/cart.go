package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/shif13/shinab/internal/domain"
	"github.com/shif13/shinab/internal/repository"
)

type cartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) repository.CartRepository {
	return &cartRepository{db: db}
}

// GetByUserID returns the user's cart, creating an empty one on first
// access so callers never see "no cart".
func (r *cartRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	const selectCart = `
		SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1
	`

	cart := &domain.Cart{}
	err := r.db.QueryRowContext(ctx, selectCart, userID).
		Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		fresh := domain.NewCart(userID)
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO carts (id, user_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id) DO NOTHING
		`, fresh.ID, fresh.UserID, fresh.CreatedAt, fresh.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("cart create error: %w", err)
		}

		// A concurrent first access may have won the insert; re-select so
		// every caller works with the row that actually exists.
		err = r.db.QueryRowContext(ctx, selectCart, userID).
			Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	}
	if err != nil {
		return nil, fmt.Errorf("cart query error: %w", err)
	}

	if err := r.loadItems(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *cartRepository) loadItems(ctx context.Context, cart *domain.Cart) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.size, ci.color,
			   p.id, p.name, p.slug, p.description, p.price, p.stock, p.images,
			   p.category, p.created_at, p.updated_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
	`, cart.ID)
	if err != nil {
		return fmt.Errorf("cart items query error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		product := &domain.Product{}
		err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.ProductID,
			&item.Quantity,
			&item.Size,
			&item.Color,
			&product.ID,
			&product.Name,
			&product.Slug,
			&product.Description,
			&product.Price,
			&product.Stock,
			pq.Array(&product.Images),
			&product.Category,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("cart item scan error: %w", err)
		}
		item.Product = product
		cart.Items = append(cart.Items, item)
	}
	return rows.Err()
}

func (r *cartRepository) AddItem(ctx context.Context, item *domain.CartItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_items (id, cart_id, product_id, quantity, size, color)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, item.ID, item.CartID, item.ProductID, item.Quantity, item.Size, item.Color)
	if err != nil {
		return fmt.Errorf("cart item insert error: %w", err)
	}
	return nil
}

func (r *cartRepository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE cart_items SET quantity = $2 WHERE id = $1
	`, itemID, quantity)
	if err != nil {
		return fmt.Errorf("cart item update error: %w", err)
	}
	return requireAffected(result, domain.ErrCartNotFound)
}

func (r *cartRepository) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_items WHERE id = $1 AND cart_id = $2
	`, itemID, cartID)
	if err != nil {
		return fmt.Errorf("cart item delete error: %w", err)
	}
	return requireAffected(result, domain.ErrCartNotFound)
}

func (r *cartRepository) Clear(ctx context.Context, cartID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("cart clear error: %w", err)
	}
	return nil
}
