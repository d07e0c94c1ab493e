package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/shif13/shinab/internal/domain"
	"github.com/shif13/shinab/internal/httpx"
	"github.com/shif13/shinab/internal/service"
)

type CartHandler struct {
	cartService *service.CartService
}

func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	cart, err := h.cartService.GetCart(c.Context(), currentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}

	return httpx.Success(c, "Cart retrieved successfully", fiber.Map{
		"cart":    cart,
		"summary": cart.Summarize(),
	})
}

func (h *CartHandler) AddToCart(c *fiber.Ctx) error {
	var request domain.AddToCartRequest
	if err := c.BodyParser(&request); err != nil {
		return httpx.BadRequest(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}

	cart, err := h.cartService.AddToCart(c.Context(), currentUser(c).ID, request)
	if err != nil {
		return respondError(c, err)
	}

	return httpx.Success(c, "Item added to cart", fiber.Map{
		"cart":    cart,
		"summary": cart.Summarize(),
	})
}

func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	itemID, err := uuid.Parse(c.Params("itemId"))
	if err != nil {
		return httpx.BadRequest(c, "Invalid cart item ID", nil)
	}

	var request struct {
		Quantity int `json:"quantity"`
	}
	if err := c.BodyParser(&request); err != nil {
		return httpx.BadRequest(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}

	cart, err := h.cartService.UpdateItemQuantity(c.Context(), currentUser(c).ID, itemID, request.Quantity)
	if err != nil {
		return respondError(c, err)
	}

	return httpx.Success(c, "Cart item updated", fiber.Map{
		"cart":    cart,
		"summary": cart.Summarize(),
	})
}

func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	itemID, err := uuid.Parse(c.Params("itemId"))
	if err != nil {
		return httpx.BadRequest(c, "Invalid cart item ID", nil)
	}

	cart, err := h.cartService.RemoveItem(c.Context(), currentUser(c).ID, itemID)
	if err != nil {
		return respondError(c, err)
	}

	return httpx.Success(c, "Item removed from cart", fiber.Map{
		"cart":    cart,
		"summary": cart.Summarize(),
	})
}

func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	if err := h.cartService.ClearCart(c.Context(), currentUser(c).ID); err != nil {
		return respondError(c, err)
	}
	return httpx.Success(c, "Cart cleared", nil)
}
