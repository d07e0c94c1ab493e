package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shif13/shinab/internal/domain"
	"github.com/shif13/shinab/internal/repository"
)

type WishlistService struct {
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
}

func NewWishlistService(wishlistRepo repository.WishlistRepository, productRepo repository.ProductRepository) *WishlistService {
	return &WishlistService{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
	}
}

func (s *WishlistService) List(ctx context.Context, userID uuid.UUID) ([]*domain.WishlistItem, error) {
	return s.wishlistRepo.ListByUserID(ctx, userID)
}

func (s *WishlistService) Add(ctx context.Context, userID, productID uuid.UUID) error {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		return err
	}

	return s.wishlistRepo.Add(ctx, &domain.WishlistItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now(),
	})
}

func (s *WishlistService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	return s.wishlistRepo.Remove(ctx, userID, productID)
}
