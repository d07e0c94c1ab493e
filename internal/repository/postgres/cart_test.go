package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newCartRepoMock(t *testing.T) (*cartRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &cartRepository{db: db}, mock
}

func cartRow(cartID, userID uuid.UUID) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "user_id", "created_at", "updated_at"}).
		AddRow(cartID.String(), userID.String(), now, now)
}

func emptyCartItems() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "cart_id", "product_id", "quantity", "size", "color",
		"p_id", "name", "slug", "description", "price", "stock", "images",
		"category", "created_at", "updated_at",
	})
}

func TestCartGetByUserID_Existing(t *testing.T) {
	repo, mock := newCartRepoMock(t)

	userID := uuid.New()
	cartID := uuid.New()

	mock.ExpectQuery("SELECT id, user_id, created_at, updated_at FROM carts").
		WithArgs(userID).
		WillReturnRows(cartRow(cartID, userID))
	mock.ExpectQuery("SELECT ci.id").
		WithArgs(cartID).
		WillReturnRows(emptyCartItems())

	cart, err := repo.GetByUserID(context.Background(), userID)

	assert.NoError(t, err)
	assert.Equal(t, cartID, cart.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartGetByUserID_FirstAccessCreates(t *testing.T) {
	repo, mock := newCartRepoMock(t)

	userID := uuid.New()
	insertedID := uuid.New()

	mock.ExpectQuery("SELECT id, user_id, created_at, updated_at FROM carts").
		WithArgs(userID).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO carts").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id, user_id, created_at, updated_at FROM carts").
		WithArgs(userID).
		WillReturnRows(cartRow(insertedID, userID))
	mock.ExpectQuery("SELECT ci.id").
		WithArgs(insertedID).
		WillReturnRows(emptyCartItems())

	cart, err := repo.GetByUserID(context.Background(), userID)

	assert.NoError(t, err)
	assert.Equal(t, insertedID, cart.ID)
	assert.Empty(t, cart.Items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartGetByUserID_ConcurrentFirstAccessUsesWinnersRow(t *testing.T) {
	repo, mock := newCartRepoMock(t)

	userID := uuid.New()
	winnerCartID := uuid.New()

	mock.ExpectQuery("SELECT id, user_id, created_at, updated_at FROM carts").
		WithArgs(userID).
		WillReturnError(sql.ErrNoRows)
	// a concurrent request already created the cart, the insert is a no-op
	mock.ExpectExec("INSERT INTO carts").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id, user_id, created_at, updated_at FROM carts").
		WithArgs(userID).
		WillReturnRows(cartRow(winnerCartID, userID))
	mock.ExpectQuery("SELECT ci.id").
		WithArgs(winnerCartID).
		WillReturnRows(emptyCartItems())

	cart, err := repo.GetByUserID(context.Background(), userID)

	assert.NoError(t, err)
	// the row that exists, not the locally generated one
	assert.Equal(t, winnerCartID, cart.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
