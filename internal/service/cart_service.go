package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/shif13/shinab/internal/domain"
	"github.com/shif13/shinab/internal/repository"
)

type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	return s.cartRepo.GetByUserID(ctx, userID)
}

// AddToCart adds a product variant to the cart, merging quantities when
// the same product, size and color is already present. The stock check
// here is advisory; the binding check happens at order creation.
func (s *CartService) AddToCart(ctx context.Context, userID uuid.UUID, request domain.AddToCartRequest) (*domain.Cart, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, request.ProductID)
	if err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if existing := cart.FindItem(request.ProductID, request.Size, request.Color); existing != nil {
		newQuantity := existing.Quantity + request.Quantity
		if !product.HasStock(newQuantity) {
			return nil, fmt.Errorf("product %s: %w", product.Name, domain.ErrInsufficientStock)
		}
		if err := s.cartRepo.UpdateItemQuantity(ctx, existing.ID, newQuantity); err != nil {
			return nil, err
		}
	} else {
		if !product.HasStock(request.Quantity) {
			return nil, fmt.Errorf("product %s: %w", product.Name, domain.ErrInsufficientStock)
		}
		item := &domain.CartItem{
			ID:        uuid.New(),
			CartID:    cart.ID,
			ProductID: request.ProductID,
			Quantity:  request.Quantity,
			Size:      request.Size,
			Color:     request.Color,
		}
		if err := s.cartRepo.AddItem(ctx, item); err != nil {
			return nil, err
		}
	}

	return s.cartRepo.GetByUserID(ctx, userID)
}

func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrValidationFailed)
	}

	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var target *domain.CartItem
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			target = &cart.Items[i]
			break
		}
	}
	if target == nil {
		return nil, domain.ErrCartNotFound
	}

	if target.Product != nil && !target.Product.HasStock(quantity) {
		return nil, fmt.Errorf("product %s: %w", target.Product.Name, domain.ErrInsufficientStock)
	}

	if err := s.cartRepo.UpdateItemQuantity(ctx, itemID, quantity); err != nil {
		return nil, err
	}

	return s.cartRepo.GetByUserID(ctx, userID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*domain.Cart, error) {
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cartRepo.RemoveItem(ctx, cart.ID, itemID); err != nil {
		return nil, err
	}

	return s.cartRepo.GetByUserID(ctx, userID)
}

func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	return s.cartRepo.Clear(ctx, cart.ID)
}
