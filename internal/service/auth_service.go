package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/shif13/shinab/internal/domain"
	"github.com/shif13/shinab/internal/messaging"
	"github.com/shif13/shinab/internal/repository"
)

type AuthService struct {
	userRepo  repository.UserRepository
	publisher EventPublisher
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(userRepo repository.UserRepository, publisher EventPublisher, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		publisher: publisher,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

type AccessClaims struct {
	UserID uuid.UUID       `json:"user_id"`
	Role   domain.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Register creates the account and emits a user.registered event for the
// welcome email. The event is best-effort and detached.
func (s *AuthService) Register(ctx context.Context, request domain.RegisterRequest) (*domain.User, string, error) {
	if err := request.Validate(); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("password hash error: %w", err)
	}

	user := domain.NewUser(request.Email, string(hash), request.FirstName, request.LastName)

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	go func() {
		event := messaging.Event{
			ID:        uuid.New(),
			UserID:    user.ID,
			EventType: messaging.UserRegisteredEvent,
			Service:   "auth-service",
			Payload: messaging.UserRegisteredPayload{
				Email:     user.Email,
				FirstName: user.FirstName,
			},
		}
		if err := s.publisher.PublishEvent(event); err != nil {
			log.Printf("Registration event publish error (dropped): %v", err)
		}
	}()

	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, request domain.LoginRequest) (*domain.User, string, error) {
	if err := request.Validate(); err != nil {
		return nil, "", err
	}

	user, err := s.userRepo.GetByEmail(ctx, request.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.Password)); err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Authenticate parses and validates a bearer token and loads the current
// user, for use by the auth middleware.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*domain.User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidCredentials
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	return s.userRepo.GetByID(ctx, claims.UserID)
}

func (s *AuthService) issueToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("token signing error: %w", err)
	}
	return signed, nil
}
