package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/shif13/shinab/internal/domain"
	"github.com/shif13/shinab/internal/gateway"
	"github.com/shif13/shinab/internal/messaging"
	"github.com/shif13/shinab/internal/repository"
)

const paymentCurrency = "inr"

type PaymentService struct {
	orderRepo repository.OrderRepository
	userRepo  repository.UserRepository
	gateway   gateway.PaymentGateway
	publisher EventPublisher
}

func NewPaymentService(
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	paymentGateway gateway.PaymentGateway,
	publisher EventPublisher,
) *PaymentService {
	return &PaymentService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		gateway:   paymentGateway,
		publisher: publisher,
	}
}

// CreateIntent requests a processor intent for the order total and stores
// the external reference on the order. Already-paid orders are rejected.
func (s *PaymentService) CreateIntent(ctx context.Context, userID, orderID uuid.UUID) (*gateway.PaymentIntent, error) {
	order, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if order.IsPaid() {
		return nil, fmt.Errorf("order %s: %w", order.OrderNumber, domain.ErrAlreadyPaid)
	}

	intent, err := s.gateway.CreateIntent(ctx, order.TotalMinorUnits(), paymentCurrency)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.SetPaymentIntentID(ctx, order.ID, intent.ID); err != nil {
		return nil, err
	}

	log.Printf("Payment intent created: OrderNumber=%s, IntentID=%s", order.OrderNumber, intent.ID)
	return intent, nil
}

// VerifyResult reports the outcome of a synchronous verification call.
// Settled is true only when this call performed the PENDING -> PAID
// transition; a still-in-flight intent comes back with its processor
// status and no mutation.
type VerifyResult struct {
	Order   *domain.Order
	Status  string
	Settled bool
}

// VerifyPayment re-queries the intent from the processor and settles the
// order if the payment succeeded. The settle is idempotent and shared
// with the webhook path, so whichever observer lands first wins and the
// other becomes a no-op.
func (s *PaymentService) VerifyPayment(ctx context.Context, userID uuid.UUID, request domain.VerifyPaymentRequest) (*VerifyResult, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	order, err := s.ownedOrder(ctx, userID, request.OrderID)
	if err != nil {
		return nil, err
	}

	intent, err := s.gateway.RetrieveIntent(ctx, request.PaymentIntentID)
	if err != nil {
		return nil, err
	}

	switch intent.Status {
	case gateway.IntentStatusSucceeded:
		settled, err := s.settle(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		updated, err := s.orderRepo.GetByID(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		return &VerifyResult{Order: updated, Status: intent.Status, Settled: settled}, nil

	case gateway.IntentStatusProcessing, gateway.IntentStatusRequiresAction:
		return &VerifyResult{Order: order, Status: intent.Status}, nil

	default:
		return nil, fmt.Errorf("payment verification failed with status %q: %w",
			intent.Status, domain.ErrInvalidState)
	}
}

// HandleWebhookEvent applies a verified processor event. Events for
// unknown references are acknowledged and dropped so the processor stops
// redelivering them.
func (s *PaymentService) HandleWebhookEvent(ctx context.Context, event *gateway.WebhookEvent) error {
	switch event.Type {
	case gateway.EventPaymentSucceeded:
		order, err := s.orderRepo.GetByPaymentIntentID(ctx, event.Data.Object.ID)
		if err != nil {
			if errors.Is(err, domain.ErrOrderNotFound) {
				log.Printf("Webhook for unknown intent %s ignored", event.Data.Object.ID)
				return nil
			}
			return err
		}
		_, err = s.settle(ctx, order.ID)
		return err

	case gateway.EventPaymentFailed:
		order, err := s.orderRepo.GetByPaymentIntentID(ctx, event.Data.Object.ID)
		if err != nil {
			if errors.Is(err, domain.ErrOrderNotFound) {
				log.Printf("Webhook for unknown intent %s ignored", event.Data.Object.ID)
				return nil
			}
			return err
		}
		if err := s.orderRepo.MarkPaymentFailed(ctx, order.ID); err != nil {
			return err
		}
		log.Printf("Payment failed: OrderNumber=%s", order.OrderNumber)
		return nil

	default:
		log.Printf("Unhandled webhook event type %s", event.Type)
		return nil
	}
}

// settle performs the idempotent PAID/PROCESSING transition. Side effects
// fire only when the row actually transitioned, so a second observer of
// the same success event does nothing.
func (s *PaymentService) settle(ctx context.Context, orderID uuid.UUID) (bool, error) {
	applied, err := s.orderRepo.MarkPaid(ctx, orderID, time.Now())
	if err != nil {
		return false, err
	}
	if !applied {
		log.Printf("Order %s already settled, skipping", orderID)
		return false, nil
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		// The transition committed; only the follow-up notification is lost.
		log.Printf("Settled order reload error: %v", err)
		return true, nil
	}

	log.Printf("Payment settled: OrderNumber=%s, Total=%.2f", order.OrderNumber, order.Total)

	go s.publishPaidEvent(order)

	return true, nil
}

func (s *PaymentService) publishPaidEvent(order *domain.Order) {
	user, err := s.userRepo.GetByID(context.Background(), order.UserID)
	if err != nil {
		log.Printf("Paid event skipped, user lookup failed: %v", err)
		return
	}

	event := messaging.Event{
		ID:        uuid.New(),
		UserID:    order.UserID,
		OrderID:   order.ID,
		EventType: messaging.OrderPaidEvent,
		Service:   "payment-service",
		Payload: messaging.OrderPaidPayload{
			OrderNumber: order.OrderNumber,
			Email:       user.Email,
			FirstName:   user.FirstName,
			Total:       order.Total,
		},
	}

	if err := s.publisher.PublishEvent(event); err != nil {
		log.Printf("Paid event publish error (dropped): %v", err)
	}
}

func (s *PaymentService) ownedOrder(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}
