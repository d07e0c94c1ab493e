package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/shif13/shinab/internal/domain"
	"github.com/shif13/shinab/internal/repository"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleAuthService handles sign-in with Google. The callback exchanges
// the authorization code, reads the profile, and maps it onto a local
// account: by linked Google ID first, then by email (linking the account),
// creating a fresh one otherwise.
type GoogleAuthService struct {
	userRepo    repository.UserRepository
	auth        *AuthService
	oauth       *oauth2.Config
	userInfoURL string
}

func NewGoogleAuthService(userRepo repository.UserRepository, auth *AuthService, clientID, clientSecret, callbackURL string) *GoogleAuthService {
	return &GoogleAuthService{
		userRepo: userRepo,
		auth:     auth,
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

// AuthCodeURL builds the consent page redirect for the given anti-forgery
// state token.
func (s *GoogleAuthService) AuthCodeURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

type googleProfile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"given_name"`
	LastName  string `json:"family_name"`
}

// Login completes the callback leg: code exchange, profile fetch, account
// lookup or creation, token issue.
func (s *GoogleAuthService) Login(ctx context.Context, code string) (*domain.User, string, error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("%w: code exchange failed: %v", domain.ErrInvalidCredentials, err)
	}

	profile, err := s.fetchProfile(ctx, token)
	if err != nil {
		return nil, "", err
	}
	if profile.Email == "" {
		return nil, "", fmt.Errorf("%w: profile carries no email", domain.ErrInvalidCredentials)
	}

	user, err := s.resolveUser(ctx, profile)
	if err != nil {
		return nil, "", err
	}

	accessToken, err := s.auth.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, accessToken, nil
}

func (s *GoogleAuthService) fetchProfile(ctx context.Context, token *oauth2.Token) (*googleProfile, error) {
	resp, err := s.oauth.Client(ctx, token).Get(s.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: profile fetch failed: %v", domain.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("%w: profile endpoint returned %d", domain.ErrUpstreamFailure, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: profile read failed: %v", domain.ErrUpstreamFailure, err)
	}

	profile := &googleProfile{}
	if err := json.Unmarshal(body, profile); err != nil {
		return nil, fmt.Errorf("%w: malformed profile: %v", domain.ErrUpstreamFailure, err)
	}
	return profile, nil
}

func (s *GoogleAuthService) resolveUser(ctx context.Context, profile *googleProfile) (*domain.User, error) {
	user, err := s.userRepo.GetByGoogleID(ctx, profile.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	// An existing password account with the same email gets linked.
	user, err = s.userRepo.GetByEmail(ctx, profile.Email)
	if err == nil {
		if err := s.userRepo.LinkGoogleID(ctx, user.ID, profile.ID); err != nil {
			return nil, err
		}
		user.GoogleID = profile.ID
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	user = domain.NewUser(profile.Email, unusablePasswordHash(), profile.FirstName, profile.LastName)
	user.GoogleID = profile.ID
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("User registered via Google: Email=%s", user.Email)
	return user, nil
}

// unusablePasswordHash fills the password column for accounts that only
// sign in with Google; no input can ever match it.
func unusablePasswordHash() string {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		secret = []byte("unusable")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(secret)), bcrypt.MinCost)
	if err != nil {
		return ""
	}
	return string(hash)
}
