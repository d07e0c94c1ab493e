package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/shif13/shinab/internal/domain"
	"github.com/shif13/shinab/internal/messaging"
	"github.com/shif13/shinab/internal/repository"
)

// EventPublisher is the slice of the messaging publisher the services
// need; tests substitute a mock.
type EventPublisher interface {
	PublishEvent(event messaging.Event) error
}

type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	publisher   EventPublisher
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	publisher EventPublisher,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		publisher:   publisher,
	}
}

// CreateOrder validates every requested line against live inventory,
// snapshots product name/price/image per line, and persists the order
// atomically. Stock is reserved by the storage layer inside the same
// transaction, so a line that loses a race to the last unit rolls the
// whole order back. The confirmation notification is fire-and-forget.
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, request domain.CreateOrderRequest) (*domain.Order, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	// All sufficiency checks complete before any reservation happens.
	items := make([]domain.OrderItem, 0, len(request.Items))
	for _, line := range request.Items {
		product, err := s.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", line.ProductID, err)
		}

		if !product.HasStock(line.Quantity) {
			return nil, fmt.Errorf("product %s: %w", product.Name, domain.ErrInsufficientStock)
		}

		items = append(items, domain.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.PrimaryImage(),
			Quantity:  line.Quantity,
			Size:      line.Size,
			Color:     line.Color,
		})
	}

	order := domain.NewOrder(userID, items, request.ShippingAddress, request.PaymentMethod)

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("order creation error: %w", err)
	}

	log.Printf("Order created: OrderNumber=%s, UserID=%s, Total=%.2f",
		order.OrderNumber, order.UserID, order.Total)

	go s.publishOrderEvent(order, messaging.OrderCreatedEvent, "")

	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		// Foreign orders are indistinguishable from missing ones.
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	orders, err := s.orderRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("orders retrieval error: %w", err)
	}
	return orders, nil
}

// CancelOrder flips a PENDING or PROCESSING order to CANCELLED and
// restores each line item's stock exactly once. Shipped and delivered
// orders cannot be cancelled.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if !order.CanCancel() {
		return nil, fmt.Errorf("order %s is %s: %w", order.OrderNumber, order.OrderStatus, domain.ErrInvalidState)
	}

	if err := s.orderRepo.Cancel(ctx, orderID, time.Now()); err != nil {
		return nil, err
	}

	cancelled, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	log.Printf("Order cancelled: OrderNumber=%s, UserID=%s", cancelled.OrderNumber, userID)

	go s.publishOrderEvent(cancelled, messaging.OrderCancelledEvent, "cancelled by customer")

	return cancelled, nil
}

// publishOrderEvent runs detached from the request path. Notification
// delivery is best-effort; failures are logged and dropped.
func (s *OrderService) publishOrderEvent(order *domain.Order, eventType messaging.EventType, reason string) {
	user, err := s.userRepo.GetByID(context.Background(), order.UserID)
	if err != nil {
		log.Printf("Order event skipped, user lookup failed: %v", err)
		return
	}

	var payload interface{}
	switch eventType {
	case messaging.OrderCreatedEvent:
		payload = messaging.OrderCreatedPayload{
			OrderNumber: order.OrderNumber,
			Email:       user.Email,
			FirstName:   user.FirstName,
			Total:       order.Total,
		}
	case messaging.OrderCancelledEvent:
		payload = messaging.OrderCancelledPayload{
			OrderNumber: order.OrderNumber,
			Email:       user.Email,
			FirstName:   user.FirstName,
			Reason:      reason,
		}
	default:
		return
	}

	event := messaging.Event{
		ID:        uuid.New(),
		UserID:    order.UserID,
		OrderID:   order.ID,
		EventType: eventType,
		Service:   "order-service",
		Payload:   payload,
	}

	if err := s.publisher.PublishEvent(event); err != nil {
		log.Printf("Order event publish error (dropped): %v", err)
	}
}
