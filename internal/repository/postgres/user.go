package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/shif13/shinab/internal/domain"
	"github.com/shif13/shinab/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, google_id, first_name, last_name, phone, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.GoogleID,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("user insert error: %w", err)
	}
	return nil
}

const selectUser = `
	SELECT id, email, password_hash, google_id, first_name, last_name, phone, role,
		   created_at, updated_at
	FROM users
`

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE id = $1`, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE email = $1`, email))
}

func (r *userRepository) GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE google_id = $1`, googleID))
}

func (r *userRepository) LinkGoogleID(ctx context.Context, userID uuid.UUID, googleID string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET google_id = $2, updated_at = NOW() WHERE id = $1
	`, userID, googleID)
	if err != nil {
		return fmt.Errorf("google id link error: %w", err)
	}
	return requireAffected(result, domain.ErrUserNotFound)
}

func (r *userRepository) scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.GoogleID,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("user scan error: %w", err)
	}
	return user, nil
}
