package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/shif13/shinab/internal/domain"
)

func newOrderRepoMock(t *testing.T) (*orderRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &orderRepository{db: db}, mock
}

func testOrder(itemCount int) *domain.Order {
	items := make([]domain.OrderItem, 0, itemCount)
	for i := 0; i < itemCount; i++ {
		items = append(items, domain.OrderItem{
			ProductID: uuid.New(),
			Name:      "Silk Scarf",
			Price:     500,
			Quantity:  2,
		})
	}
	return domain.NewOrder(uuid.New(), items,
		domain.ShippingAddress{Street: "1 MG Road", City: "Bengaluru"}, "card")
}

func TestOrderCreate_CommitsOrderItemsAndDecrements(t *testing.T) {
	repo, mock := newOrderRepoMock(t)
	order := testOrder(2)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WillReturnResult(sqlmock.NewResult(0, 1))
	for _, item := range order.Items {
		mock.ExpectExec("INSERT INTO order_items").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE products").
			WithArgs(item.ProductID, item.Quantity).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec("DELETE FROM cart_items").
		WithArgs(order.UserID).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), order)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderCreate_InsufficientStockRollsBack(t *testing.T) {
	repo, mock := newOrderRepoMock(t)
	order := testOrder(2)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WillReturnResult(sqlmock.NewResult(0, 1))

	// first line decrements fine
	mock.ExpectExec("INSERT INTO order_items").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE products").
		WithArgs(order.Items[0].ProductID, order.Items[0].Quantity).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// second line loses the stock guard, everything unwinds
	mock.ExpectExec("INSERT INTO order_items").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE products").
		WithArgs(order.Items[1].ProductID, order.Items[1].Quantity).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), order)

	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderCreate_FirstLineOutOfStock(t *testing.T) {
	repo, mock := newOrderRepoMock(t)
	order := testOrder(1)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE products").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), order)

	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderCancel_RestoresStockInOneTransaction(t *testing.T) {
	repo, mock := newOrderRepoMock(t)
	orderID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE products p").
		WithArgs(orderID).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := repo.Cancel(context.Background(), orderID, time.Now())

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderCancel_ShippedOrderDoesNotTouchStock(t *testing.T) {
	repo, mock := newOrderRepoMock(t)
	orderID := uuid.New()

	mock.ExpectBegin()
	// the status guard blocks the update, the order itself exists
	mock.ExpectExec("UPDATE orders").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	err := repo.Cancel(context.Background(), orderID, time.Now())

	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.NoError(t, mock.ExpectationsWereMet(), "no stock restore may run for a blocked cancel")
}

func TestOrderCancel_MissingOrder(t *testing.T) {
	repo, mock := newOrderRepoMock(t)
	orderID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	err := repo.Cancel(context.Background(), orderID, time.Now())

	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPaid_ReportsWhetherTransitionApplied(t *testing.T) {
	repo, mock := newOrderRepoMock(t)
	orderID := uuid.New()

	mock.ExpectExec("UPDATE orders").
		WillReturnResult(sqlmock.NewResult(0, 1))

	applied, err := repo.MarkPaid(context.Background(), orderID, time.Now())
	assert.NoError(t, err)
	assert.True(t, applied)

	// already PAID, the guard holds and the caller must skip side effects
	mock.ExpectExec("UPDATE orders").
		WillReturnResult(sqlmock.NewResult(0, 0))

	applied, err = repo.MarkPaid(context.Background(), orderID, time.Now())
	assert.NoError(t, err)
	assert.False(t, applied)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPaymentFailed_PaidOrderIsANoOp(t *testing.T) {
	repo, mock := newOrderRepoMock(t)
	orderID := uuid.New()

	// guard blocks the update but the order exists, so the failure event
	// is acknowledged rather than answered with not-found
	mock.ExpectExec("UPDATE orders").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err := repo.MarkPaymentFailed(context.Background(), orderID)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPaymentFailed_MissingOrder(t *testing.T) {
	repo, mock := newOrderRepoMock(t)
	orderID := uuid.New()

	mock.ExpectExec("UPDATE orders").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	err := repo.MarkPaymentFailed(context.Background(), orderID)

	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPaymentFailed_PendingOrder(t *testing.T) {
	repo, mock := newOrderRepoMock(t)
	orderID := uuid.New()

	mock.ExpectExec("UPDATE orders").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkPaymentFailed(context.Background(), orderID)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
