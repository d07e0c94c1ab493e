package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/shif13/shinab/internal/httpx"
	"github.com/shif13/shinab/internal/service"
)

type WishlistHandler struct {
	wishlistService *service.WishlistService
}

func NewWishlistHandler(wishlistService *service.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

func (h *WishlistHandler) List(c *fiber.Ctx) error {
	items, err := h.wishlistService.List(c.Context(), currentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return httpx.Success(c, "Wishlist retrieved successfully", fiber.Map{"items": items})
}

func (h *WishlistHandler) Add(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return httpx.BadRequest(c, "Invalid product ID", nil)
	}

	if err := h.wishlistService.Add(c.Context(), currentUser(c).ID, productID); err != nil {
		return respondError(c, err)
	}
	return httpx.Success(c, "Product added to wishlist", nil)
}

func (h *WishlistHandler) Remove(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return httpx.BadRequest(c, "Invalid product ID", nil)
	}

	if err := h.wishlistService.Remove(c.Context(), currentUser(c).ID, productID); err != nil {
		return respondError(c, err)
	}
	return httpx.Success(c, "Product removed from wishlist", nil)
}
