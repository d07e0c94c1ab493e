package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (r RegisterRequest) Validate() error {
	if !strings.Contains(r.Email, "@") {
		return fmt.Errorf("%w: valid email is required", ErrValidationFailed)
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrValidationFailed)
	}
	if r.FirstName == "" {
		return fmt.Errorf("%w: first name is required", ErrValidationFailed)
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	if r.Email == "" || r.Password == "" {
		return fmt.Errorf("%w: email and password are required", ErrValidationFailed)
	}
	return nil
}

type OrderLineRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Size      string    `json:"size,omitempty"`
	Color     string    `json:"color,omitempty"`
}

type CreateOrderRequest struct {
	Items           []OrderLineRequest `json:"items"`
	ShippingAddress ShippingAddress    `json:"shipping_address"`
	PaymentMethod   string             `json:"payment_method"`
}

func (r CreateOrderRequest) Validate() error {
	if len(r.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrValidationFailed)
	}
	for i, item := range r.Items {
		if item.ProductID == uuid.Nil {
			return fmt.Errorf("%w: item %d: product id is required", ErrValidationFailed, i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item %d: quantity must be positive", ErrValidationFailed, i)
		}
	}
	if r.ShippingAddress.Street == "" || r.ShippingAddress.City == "" {
		return fmt.Errorf("%w: shipping address is incomplete", ErrValidationFailed)
	}
	if r.PaymentMethod == "" {
		return fmt.Errorf("%w: payment method is required", ErrValidationFailed)
	}
	return nil
}

type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Size      string    `json:"size,omitempty"`
	Color     string    `json:"color,omitempty"`
}

func (r AddToCartRequest) Validate() error {
	if r.ProductID == uuid.Nil {
		return fmt.Errorf("%w: product id is required", ErrValidationFailed)
	}
	if r.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrValidationFailed)
	}
	return nil
}

type CreateIntentRequest struct {
	OrderID uuid.UUID `json:"order_id"`
}

type VerifyPaymentRequest struct {
	PaymentIntentID string    `json:"payment_intent_id"`
	OrderID         uuid.UUID `json:"order_id"`
}

func (r VerifyPaymentRequest) Validate() error {
	if r.PaymentIntentID == "" {
		return fmt.Errorf("%w: payment intent id is required", ErrValidationFailed)
	}
	if r.OrderID == uuid.Nil {
		return fmt.Errorf("%w: order id is required", ErrValidationFailed)
	}
	return nil
}
