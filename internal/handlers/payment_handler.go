package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/shif13/shinab/internal/domain"
	"github.com/shif13/shinab/internal/gateway"
	"github.com/shif13/shinab/internal/httpx"
	"github.com/shif13/shinab/internal/service"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
	webhookSecret  string
}

func NewPaymentHandler(paymentService *service.PaymentService, webhookSecret string) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		webhookSecret:  webhookSecret,
	}
}

func (h *PaymentHandler) CreateIntent(c *fiber.Ctx) error {
	var request domain.CreateIntentRequest
	if err := c.BodyParser(&request); err != nil {
		return httpx.BadRequest(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}

	intent, err := h.paymentService.CreateIntent(c.Context(), currentUser(c).ID, request.OrderID)
	if err != nil {
		return respondError(c, err)
	}

	return httpx.Success(c, "Payment intent created", fiber.Map{
		"client_secret":     intent.ClientSecret,
		"payment_intent_id": intent.ID,
	})
}

func (h *PaymentHandler) VerifyPayment(c *fiber.Ctx) error {
	var request domain.VerifyPaymentRequest
	if err := c.BodyParser(&request); err != nil {
		return httpx.BadRequest(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}

	result, err := h.paymentService.VerifyPayment(c.Context(), currentUser(c).ID, request)
	if err != nil {
		return respondError(c, err)
	}

	if result.Status == gateway.IntentStatusSucceeded {
		return httpx.Success(c, "Payment verified successfully", fiber.Map{"order": result.Order})
	}

	// Payment is still in flight; nothing was mutated.
	return httpx.Success(c, "Payment not completed yet", fiber.Map{"status": result.Status})
}

// HandleWebhook is the processor's asynchronous ingress. The signature is
// verified against the shared secret before the payload is even decoded;
// forged or replayed requests get a 400 and never touch order state.
func (h *PaymentHandler) HandleWebhook(c *fiber.Ctx) error {
	event, err := gateway.ParseWebhookEvent(c.Body(), c.Get("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		log.Printf("Webhook rejected: %v", err)
		return respondError(c, err)
	}

	if err := h.paymentService.HandleWebhookEvent(c.Context(), event); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"received": true})
}
