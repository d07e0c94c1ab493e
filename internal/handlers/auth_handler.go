package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shif13/shinab/internal/domain"
	"github.com/shif13/shinab/internal/httpx"
	"github.com/shif13/shinab/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var request domain.RegisterRequest
	if err := c.BodyParser(&request); err != nil {
		return httpx.BadRequest(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}

	user, token, err := h.authService.Register(c.Context(), request)
	if err != nil {
		return respondError(c, err)
	}

	return httpx.Created(c, "Account created successfully", fiber.Map{
		"user":  user,
		"token": token,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var request domain.LoginRequest
	if err := c.BodyParser(&request); err != nil {
		return httpx.BadRequest(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}

	user, token, err := h.authService.Login(c.Context(), request)
	if err != nil {
		return respondError(c, err)
	}

	return httpx.Success(c, "Logged in successfully", fiber.Map{
		"user":  user,
		"token": token,
	})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return httpx.Success(c, "Current user", fiber.Map{"user": currentUser(c)})
}
