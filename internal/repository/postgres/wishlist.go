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

type wishlistRepository struct {
	db *sql.DB
}

func NewWishlistRepository(db *sql.DB) repository.WishlistRepository {
	return &wishlistRepository{db: db}
}

func (r *wishlistRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.WishlistItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT w.id, w.user_id, w.product_id, w.created_at,
			   p.id, p.name, p.slug, p.description, p.price, p.stock, p.images,
			   p.category, p.created_at, p.updated_at
		FROM wishlist_items w
		JOIN products p ON p.id = w.product_id
		WHERE w.user_id = $1
		ORDER BY w.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("wishlist query error: %w", err)
	}
	defer rows.Close()

	var items []*domain.WishlistItem
	for rows.Next() {
		item := &domain.WishlistItem{}
		product := &domain.Product{}
		err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.ProductID,
			&item.CreatedAt,
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
			return nil, fmt.Errorf("wishlist scan error: %w", err)
		}
		item.Product = product
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *wishlistRepository) Add(ctx context.Context, item *domain.WishlistItem) error {
	// Re-adding the same product is a no-op rather than an error.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wishlist_items (id, user_id, product_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id) DO NOTHING
	`, item.ID, item.UserID, item.ProductID, item.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return domain.ErrProductNotFound
		}
		return fmt.Errorf("wishlist insert error: %w", err)
	}
	return nil
}

func (r *wishlistRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2
	`, userID, productID)
	if err != nil {
		return fmt.Errorf("wishlist delete error: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}
