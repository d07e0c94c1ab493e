package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/shif13/shinab/internal/domain"
	"github.com/shif13/shinab/internal/httpx"
	"github.com/shif13/shinab/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var request domain.CreateOrderRequest
	if err := c.BodyParser(&request); err != nil {
		return httpx.BadRequest(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}

	order, err := h.orderService.CreateOrder(c.Context(), currentUser(c).ID, request)
	if err != nil {
		return respondError(c, err)
	}

	return httpx.Created(c, "Order created successfully", fiber.Map{"order": order})
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return httpx.BadRequest(c, "Invalid order ID", map[string]interface{}{
			"order_id": c.Params("id"),
		})
	}

	order, err := h.orderService.GetOrder(c.Context(), currentUser(c).ID, orderID)
	if err != nil {
		return respondError(c, err)
	}

	return httpx.Success(c, "Order retrieved successfully", fiber.Map{"order": order})
}

func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	orders, err := h.orderService.ListOrders(c.Context(), currentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}

	return httpx.Success(c, "Orders retrieved successfully", fiber.Map{"orders": orders})
}

func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return httpx.BadRequest(c, "Invalid order ID", map[string]interface{}{
			"order_id": c.Params("id"),
		})
	}

	order, err := h.orderService.CancelOrder(c.Context(), currentUser(c).ID, orderID)
	if err != nil {
		return respondError(c, err)
	}

	return httpx.Success(c, "Order cancelled successfully", fiber.Map{"order": order})
}
