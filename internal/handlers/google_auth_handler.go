package handlers

import (
	"fmt"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/shif13/shinab/internal/domain"
	"github.com/shif13/shinab/internal/httpx"
	"github.com/shif13/shinab/internal/service"
)

const oauthStateCookie = "oauth_state"

type GoogleAuthHandler struct {
	googleAuth *service.GoogleAuthService
	// clientURL, when set, is where the callback redirects with the token;
	// otherwise the token is returned as JSON.
	clientURL string
}

func NewGoogleAuthHandler(googleAuth *service.GoogleAuthService, clientURL string) *GoogleAuthHandler {
	return &GoogleAuthHandler{
		googleAuth: googleAuth,
		clientURL:  clientURL,
	}
}

// Login sends the browser to Google's consent page with a fresh
// anti-forgery state token pinned in a cookie.
func (h *GoogleAuthHandler) Login(c *fiber.Ctx) error {
	state := uuid.New().String()
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		HTTPOnly: true,
		SameSite: "Lax",
		Expires:  time.Now().Add(10 * time.Minute),
	})
	return c.Redirect(h.googleAuth.AuthCodeURL(state), fiber.StatusTemporaryRedirect)
}

// Callback finishes the sign-in. The state parameter must match the
// cookie set on the way out; a mismatch means the request did not start
// here.
func (h *GoogleAuthHandler) Callback(c *fiber.Ctx) error {
	state := c.Query("state")
	if state == "" || state != c.Cookies(oauthStateCookie) {
		return respondError(c, fmt.Errorf("%w: state mismatch", domain.ErrInvalidCredentials))
	}
	c.ClearCookie(oauthStateCookie)

	code := c.Query("code")
	if code == "" {
		return httpx.BadRequest(c, "Missing authorization code", nil)
	}

	user, token, err := h.googleAuth.Login(c.Context(), code)
	if err != nil {
		return respondError(c, err)
	}

	if h.clientURL != "" {
		return c.Redirect(h.clientURL+"/auth/success?token="+url.QueryEscape(token), fiber.StatusTemporaryRedirect)
	}

	return httpx.Success(c, "Logged in with Google", fiber.Map{
		"user":  user,
		"token": token,
	})
}
