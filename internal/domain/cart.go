package domain

import (
	"time"

	"github.com/google/uuid"
)

type Cart struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID        uuid.UUID `json:"id"`
	CartID    uuid.UUID `json:"cart_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Size      string    `json:"size,omitempty"`
	Color     string    `json:"color,omitempty"`
	Product   *Product  `json:"product,omitempty"`
}

func NewCart(userID uuid.UUID) *Cart {
	now := time.Now()
	return &Cart{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// FindItem returns the cart line matching product, size and color, so that
// adding the same variant twice merges quantities instead of duplicating
// lines.
func (c *Cart) FindItem(productID uuid.UUID, size, color string) *CartItem {
	for i := range c.Items {
		item := &c.Items[i]
		if item.ProductID == productID && item.Size == size && item.Color == color {
			return item
		}
	}
	return nil
}

// Summary aggregates cart pricing for display. Prices come live from the
// joined product, not from a snapshot.
type CartSummary struct {
	Subtotal  float64 `json:"subtotal"`
	ItemCount int     `json:"item_count"`
}

func (c *Cart) Summarize() CartSummary {
	var summary CartSummary
	for _, item := range c.Items {
		if item.Product != nil {
			summary.Subtotal += item.Product.Price * float64(item.Quantity)
		}
		summary.ItemCount += item.Quantity
	}
	summary.Subtotal = round2(summary.Subtotal)
	return summary
}

type WishlistItem struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ProductID uuid.UUID `json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
