package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/shif13/shinab/internal/domain"
	"github.com/shif13/shinab/internal/httpx"
)

// respondError maps the domain error taxonomy onto HTTP statuses. Unknown
// errors are logged and hidden behind a generic 500.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidationFailed):
		return httpx.BadRequest(c, err.Error(), nil)
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrCartNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return httpx.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		return httpx.BadRequest(c, err.Error(), nil)
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrAlreadyPaid):
		return httpx.BadRequest(c, err.Error(), nil)
	case errors.Is(err, domain.ErrEmailTaken):
		return httpx.Conflict(c, err.Error(), nil)
	case errors.Is(err, domain.ErrInvalidCredentials):
		return httpx.Unauthorized(c, "invalid credentials")
	case errors.Is(err, domain.ErrSignatureInvalid):
		return httpx.BadRequest(c, "webhook signature verification failed", nil)
	case errors.Is(err, domain.ErrUpstreamFailure):
		return httpx.BadGateway(c, err.Error())
	default:
		log.Printf("Unhandled error: %v", err)
		return httpx.InternalServerError(c, "internal server error", nil)
	}
}
