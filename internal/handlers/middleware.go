package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/shif13/shinab/internal/domain"
	"github.com/shif13/shinab/internal/httpx"
	"github.com/shif13/shinab/internal/service"
)

const userLocalsKey = "currentUser"

// AuthRequired authenticates the bearer token and stashes the current
// user in the request locals.
func AuthRequired(authService *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return httpx.Unauthorized(c, "not authorized, no token provided")
		}

		user, err := authService.Authenticate(c.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return httpx.Unauthorized(c, "not authorized, token failed")
		}

		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *domain.User {
	user, _ := c.Locals(userLocalsKey).(*domain.User)
	return user
}
