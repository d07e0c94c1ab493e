package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

type ShippingAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

type Order struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	OrderNumber     string          `json:"order_number"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	OrderStatus     OrderStatus     `json:"order_status"`
	Subtotal        float64         `json:"subtotal"`
	ShippingCost    float64         `json:"shipping_cost"`
	Tax             float64         `json:"tax"`
	Total           float64         `json:"total"`
	PaymentIntentID string          `json:"payment_intent_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	ShippedAt       *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
}

// OrderItem is a snapshot of the product at order time. Name, price and
// image are copied so later catalog edits do not rewrite order history.
type OrderItem struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Image     string    `json:"image"`
	Quantity  int       `json:"quantity"`
	Size      string    `json:"size,omitempty"`
	Color     string    `json:"color,omitempty"`
}

// NewOrder assembles a pending order with item snapshots and computed
// totals. Stock is not touched here; reservation happens when the order is
// persisted, inside the same transaction.
func NewOrder(userID uuid.UUID, items []OrderItem, address ShippingAddress, paymentMethod string) *Order {
	orderID := uuid.New()

	var subtotal float64
	for i := range items {
		items[i].ID = uuid.New()
		items[i].OrderID = orderID
		subtotal += items[i].Price * float64(items[i].Quantity)
	}

	totals := ComputeTotals(subtotal)
	now := time.Now()

	return &Order{
		ID:              orderID,
		UserID:          userID,
		OrderNumber:     GenerateOrderNumber(),
		Items:           items,
		ShippingAddress: address,
		PaymentMethod:   paymentMethod,
		PaymentStatus:   PaymentStatusPending,
		OrderStatus:     OrderStatusPending,
		Subtotal:        totals.Subtotal,
		ShippingCost:    totals.ShippingCost,
		Tax:             totals.Tax,
		Total:           totals.Total,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// CanCancel reports whether the order is still in a cancellable state.
func (o *Order) CanCancel() bool {
	return o.OrderStatus == OrderStatusPending || o.OrderStatus == OrderStatusProcessing
}

func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// TotalMinorUnits converts the order total to the processor's smallest
// currency unit (paise for INR).
func (o *Order) TotalMinorUnits() int64 {
	return int64(o.Total*100 + 0.5)
}

// GenerateOrderNumber builds a human-facing order number from the current
// time in base36 plus a random suffix, e.g. SHN-LX2K91QF-A7P3M. The random
// part keeps concurrent creations from colliding.
func GenerateOrderNumber() string {
	const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	timestamp := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))

	suffix := make([]byte, 5)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			// crypto/rand failing means the platform is broken; fall back
			// to a nanosecond-derived character rather than panic.
			suffix[i] = alphabet[time.Now().UnixNano()%int64(len(alphabet))]
			continue
		}
		suffix[i] = alphabet[n.Int64()]
	}

	return fmt.Sprintf("SHN-%s-%s", timestamp, suffix)
}
