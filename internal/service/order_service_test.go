package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/shif13/shinab/internal/domain"
	"github.com/shif13/shinab/internal/messaging"
)

func validOrderRequest(lines ...domain.OrderLineRequest) domain.CreateOrderRequest {
	return domain.CreateOrderRequest{
		Items: lines,
		ShippingAddress: domain.ShippingAddress{
			Street:  "1 MG Road",
			City:    "Bengaluru",
			State:   "KA",
			ZipCode: "560001",
			Country: "IN",
		},
		PaymentMethod: "card",
	}
}

func TestCreateOrder_Success(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	userRepo := new(MockUserRepository)
	publisher := newCapturePublisher()

	userID := uuid.New()
	product := &domain.Product{
		ID:     uuid.New(),
		Name:   "Silk Scarf",
		Price:  1200,
		Stock:  5,
		Images: []string{"scarf.jpg"},
	}

	productRepo.On("GetByID", mock.Anything, product.ID).Return(product, nil)
	orderRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
	userRepo.On("GetByID", mock.Anything, userID).
		Return(&domain.User{ID: userID, Email: "a@b.com", FirstName: "Asha"}, nil)

	svc := NewOrderService(orderRepo, productRepo, userRepo, publisher)

	order, err := svc.CreateOrder(context.Background(), userID,
		validOrderRequest(domain.OrderLineRequest{ProductID: product.ID, Quantity: 1}))

	assert.NoError(t, err)
	assert.Equal(t, 1200.0, order.Subtotal)
	assert.Equal(t, 0.0, order.ShippingCost)
	assert.Equal(t, 1416.0, order.Total)
	assert.Equal(t, domain.PaymentStatusPending, order.PaymentStatus)

	// line item carries the catalog snapshot, not a reference
	assert.Equal(t, "Silk Scarf", order.Items[0].Name)
	assert.Equal(t, 1200.0, order.Items[0].Price)
	assert.Equal(t, "scarf.jpg", order.Items[0].Image)

	event, ok := publisher.waitForEvent(time.Second)
	assert.True(t, ok, "expected an order.created event")
	assert.Equal(t, messaging.OrderCreatedEvent, event.EventType)
	assert.Equal(t, order.ID, event.OrderID)

	orderRepo.AssertExpectations(t)
	productRepo.AssertExpectations(t)
}

func TestCreateOrder_ChargesShippingBelowThreshold(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	userRepo := new(MockUserRepository)
	publisher := newCapturePublisher()

	userID := uuid.New()
	product := &domain.Product{ID: uuid.New(), Name: "Cotton Kurta", Price: 499, Stock: 10}

	productRepo.On("GetByID", mock.Anything, product.ID).Return(product, nil)
	orderRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
	userRepo.On("GetByID", mock.Anything, userID).
		Return(&domain.User{ID: userID, Email: "a@b.com"}, nil)

	svc := NewOrderService(orderRepo, productRepo, userRepo, publisher)

	order, err := svc.CreateOrder(context.Background(), userID,
		validOrderRequest(domain.OrderLineRequest{ProductID: product.ID, Quantity: 1}))

	assert.NoError(t, err)
	assert.Equal(t, domain.FlatShippingFee, order.ShippingCost)

	publisher.waitForEvent(time.Second)
}

func TestCreateOrder_InsufficientStockRejectsWholeOrder(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	userRepo := new(MockUserRepository)
	publisher := newCapturePublisher()

	inStock := &domain.Product{ID: uuid.New(), Name: "Scarf", Price: 500, Stock: 10}
	outOfStock := &domain.Product{ID: uuid.New(), Name: "Shawl", Price: 900, Stock: 1}

	productRepo.On("GetByID", mock.Anything, inStock.ID).Return(inStock, nil)
	productRepo.On("GetByID", mock.Anything, outOfStock.ID).Return(outOfStock, nil)

	svc := NewOrderService(orderRepo, productRepo, userRepo, publisher)

	_, err := svc.CreateOrder(context.Background(), uuid.New(), validOrderRequest(
		domain.OrderLineRequest{ProductID: inStock.ID, Quantity: 1},
		domain.OrderLineRequest{ProductID: outOfStock.ID, Quantity: 3},
	))

	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	// nothing was persisted and nothing was published
	orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	select {
	case <-publisher.events:
		t.Fatal("no event should be published for a rejected order")
	default:
	}
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	userRepo := new(MockUserRepository)

	productID := uuid.New()
	productRepo.On("GetByID", mock.Anything, productID).Return(nil, domain.ErrProductNotFound)

	svc := NewOrderService(orderRepo, productRepo, userRepo, newCapturePublisher())

	_, err := svc.CreateOrder(context.Background(), uuid.New(),
		validOrderRequest(domain.OrderLineRequest{ProductID: productID, Quantity: 1}))

	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateOrder_ValidationFailure(t *testing.T) {
	svc := NewOrderService(new(MockOrderRepository), new(MockProductRepository),
		new(MockUserRepository), newCapturePublisher())

	_, err := svc.CreateOrder(context.Background(), uuid.New(), domain.CreateOrderRequest{})

	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestCreateOrder_PublishFailureDoesNotFailOrder(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	userRepo := new(MockUserRepository)
	publisher := newCapturePublisher()
	publisher.err = errors.New("broker unavailable")

	userID := uuid.New()
	product := &domain.Product{ID: uuid.New(), Name: "Scarf", Price: 500, Stock: 10}

	productRepo.On("GetByID", mock.Anything, product.ID).Return(product, nil)
	orderRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
	userRepo.On("GetByID", mock.Anything, userID).
		Return(&domain.User{ID: userID, Email: "a@b.com"}, nil)

	svc := NewOrderService(orderRepo, productRepo, userRepo, publisher)

	order, err := svc.CreateOrder(context.Background(), userID,
		validOrderRequest(domain.OrderLineRequest{ProductID: product.ID, Quantity: 1}))

	assert.NoError(t, err)
	assert.NotNil(t, order)

	publisher.waitForEvent(time.Second)
}

func TestGetOrder_ForeignOrderIsNotFound(t *testing.T) {
	orderRepo := new(MockOrderRepository)

	orderID := uuid.New()
	owner := uuid.New()
	orderRepo.On("GetByID", mock.Anything, orderID).
		Return(&domain.Order{ID: orderID, UserID: owner}, nil)

	svc := NewOrderService(orderRepo, new(MockProductRepository),
		new(MockUserRepository), newCapturePublisher())

	_, err := svc.GetOrder(context.Background(), uuid.New(), orderID)

	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestCancelOrder_Success(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	userRepo := new(MockUserRepository)
	publisher := newCapturePublisher()

	userID := uuid.New()
	orderID := uuid.New()
	pending := &domain.Order{
		ID:          orderID,
		UserID:      userID,
		OrderNumber: "SHN-TEST-00001",
		OrderStatus: domain.OrderStatusPending,
	}
	cancelled := &domain.Order{
		ID:          orderID,
		UserID:      userID,
		OrderNumber: "SHN-TEST-00001",
		OrderStatus: domain.OrderStatusCancelled,
	}

	orderRepo.On("GetByID", mock.Anything, orderID).Return(pending, nil).Once()
	orderRepo.On("Cancel", mock.Anything, orderID, mock.AnythingOfType("time.Time")).Return(nil)
	orderRepo.On("GetByID", mock.Anything, orderID).Return(cancelled, nil).Once()
	userRepo.On("GetByID", mock.Anything, userID).
		Return(&domain.User{ID: userID, Email: "a@b.com"}, nil)

	svc := NewOrderService(orderRepo, new(MockProductRepository), userRepo, publisher)

	got, err := svc.CancelOrder(context.Background(), userID, orderID)

	assert.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, got.OrderStatus)

	event, ok := publisher.waitForEvent(time.Second)
	assert.True(t, ok, "expected an order.cancelled event")
	assert.Equal(t, messaging.OrderCancelledEvent, event.EventType)

	orderRepo.AssertExpectations(t)
}

func TestCancelOrder_ShippedOrderRejected(t *testing.T) {
	orderRepo := new(MockOrderRepository)

	userID := uuid.New()
	orderID := uuid.New()
	orderRepo.On("GetByID", mock.Anything, orderID).Return(&domain.Order{
		ID:          orderID,
		UserID:      userID,
		OrderStatus: domain.OrderStatusShipped,
	}, nil)

	svc := NewOrderService(orderRepo, new(MockProductRepository),
		new(MockUserRepository), newCapturePublisher())

	_, err := svc.CancelOrder(context.Background(), userID, orderID)

	assert.ErrorIs(t, err, domain.ErrInvalidState)
	orderRepo.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything)
}
