package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shif13/shinab/internal/domain"
)

const stripeAPIBase = "https://api.stripe.com/v1"

// StripeClient talks to the Stripe payment intents API over its form-encoded
// HTTP surface. Transport failures and 5xx responses get a bounded retry;
// 4xx responses are returned as-is since retrying cannot fix them.
type StripeClient struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
	maxRetries int
}

func NewStripeClient(secretKey string) *StripeClient {
	return &StripeClient{
		secretKey:  secretKey,
		baseURL:    stripeAPIBase,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		maxRetries: 3,
	}
}

// NewStripeClientWithBaseURL is used by tests to point the client at a
// stub server.
func NewStripeClientWithBaseURL(secretKey, baseURL string) *StripeClient {
	c := NewStripeClient(secretKey)
	c.baseURL = baseURL
	return c
}

func (c *StripeClient) CreateIntent(ctx context.Context, amountMinorUnits int64, currency string) (*PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountMinorUnits, 10))
	form.Set("currency", currency)
	form.Set("automatic_payment_methods[enabled]", "true")

	intent := &PaymentIntent{}
	if err := c.do(ctx, http.MethodPost, "/payment_intents", form, intent); err != nil {
		return nil, fmt.Errorf("payment intent creation failed: %w", err)
	}
	return intent, nil
}

func (c *StripeClient) RetrieveIntent(ctx context.Context, intentID string) (*PaymentIntent, error) {
	intent := &PaymentIntent{}
	if err := c.do(ctx, http.MethodGet, "/payment_intents/"+url.PathEscape(intentID), nil, intent); err != nil {
		return nil, fmt.Errorf("payment intent retrieval failed: %w", err)
	}
	return intent, nil
}

func (c *StripeClient) do(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		var body io.Reader
		if form != nil {
			body = strings.NewReader(form.Encode())
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.secretKey)
		if form != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
		} else {
			respBody, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, readErr)
			} else if resp.StatusCode >= 500 {
				lastErr = fmt.Errorf("%w: processor returned %d", domain.ErrUpstreamFailure, resp.StatusCode)
			} else if resp.StatusCode >= 400 {
				return fmt.Errorf("%w: %s", domain.ErrUpstreamFailure, apiErrorMessage(respBody, resp.StatusCode))
			} else {
				if err := json.Unmarshal(respBody, out); err != nil {
					return fmt.Errorf("%w: malformed processor response: %v", domain.ErrUpstreamFailure, err)
				}
				return nil
			}
		}

		if attempt < c.maxRetries {
			log.Printf("Payment processor call failed (attempt %d/%d): %v", attempt, c.maxRetries, lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay * time.Duration(attempt)):
			}
		}
	}

	return lastErr
}

func apiErrorMessage(body []byte, status int) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return fmt.Sprintf("processor returned %d", status)
}

var _ PaymentGateway = (*StripeClient)(nil)
