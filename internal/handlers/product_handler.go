package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/shif13/shinab/internal/httpx"
	"github.com/shif13/shinab/internal/repository"
)

type ProductHandler struct {
	productRepo repository.ProductRepository
}

func NewProductHandler(productRepo repository.ProductRepository) *ProductHandler {
	return &ProductHandler{productRepo: productRepo}
}

func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	page := 1
	limit := 20
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}

	products, err := h.productRepo.List(c.Context(), limit, (page-1)*limit)
	if err != nil {
		return respondError(c, err)
	}

	return httpx.Success(c, "Products retrieved successfully", fiber.Map{
		"products": products,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
		},
	})
}

// GetProduct accepts either a product id or a slug in the path.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	key := c.Params("id")

	if productID, err := uuid.Parse(key); err == nil {
		product, err := h.productRepo.GetByID(c.Context(), productID)
		if err != nil {
			return respondError(c, err)
		}
		return httpx.Success(c, "Product retrieved successfully", fiber.Map{"product": product})
	}

	product, err := h.productRepo.GetBySlug(c.Context(), key)
	if err != nil {
		return respondError(c, err)
	}
	return httpx.Success(c, "Product retrieved successfully", fiber.Map{"product": product})
}
