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

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

const selectProduct = `
	SELECT id, name, slug, description, price, stock, images, category,
		   created_at, updated_at
	FROM products
`

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return r.scanProduct(r.db.QueryRowContext(ctx, selectProduct+` WHERE id = $1`, id))
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.scanProduct(r.db.QueryRowContext(ctx, selectProduct+` WHERE slug = $1`, slug))
}

func (r *productRepository) List(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		selectProduct+` ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("products query error: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		product, err := r.scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (r *productRepository) scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
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
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("product scan error: %w", err)
	}
	return product, nil
}
