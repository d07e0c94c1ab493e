// Package repository defines the storage contracts consumed by the service
// layer. The postgres subpackage provides the production implementation;
// tests substitute mocks.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shif13/shinab/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error)
	LinkGoogleID(ctx context.Context, userID uuid.UUID, googleID string) error
}

type ProductRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Product, error)
}

type OrderRepository interface {
	// Create persists the order, its line item snapshots, the per-product
	// stock decrements and the buyer's cart clear as one transaction.
	// The decrement is conditional (stock >= quantity); if any line cannot
	// be covered the whole transaction rolls back and
	// domain.ErrInsufficientStock is returned.
	Create(ctx context.Context, order *domain.Order) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetByPaymentIntentID(ctx context.Context, intentID string) (*domain.Order, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)

	SetPaymentIntentID(ctx context.Context, orderID uuid.UUID, intentID string) error

	// MarkPaid transitions the order to PAID/PROCESSING only if it is not
	// already PAID, and reports whether the transition was applied. Both
	// the verify endpoint and the webhook settle through this single
	// guarded update, which makes their race benign.
	MarkPaid(ctx context.Context, orderID uuid.UUID, paidAt time.Time) (bool, error)

	MarkPaymentFailed(ctx context.Context, orderID uuid.UUID) error

	// Cancel flips the order to CANCELLED and restores every line item's
	// stock in one transaction. Returns domain.ErrInvalidState unless the
	// order is PENDING or PROCESSING at the time of the update.
	Cancel(ctx context.Context, orderID uuid.UUID, cancelledAt time.Time) error
}

type CartRepository interface {
	// GetByUserID returns the user's cart with items and joined products,
	// creating an empty cart on first access.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	AddItem(ctx context.Context, item *domain.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) error
	Clear(ctx context.Context, cartID uuid.UUID) error
}

type WishlistRepository interface {
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.WishlistItem, error)
	Add(ctx context.Context, item *domain.WishlistItem) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	Update(ctx context.Context, notification *domain.Notification) error
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.Notification, error)
}
