// Package gateway integrates the external payment processor. The rest of
// the system only sees the PaymentGateway interface; the Stripe-backed
// implementation and a mock for local development both live here.
package gateway

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// Intent lifecycle statuses as reported by the processor.
const (
	IntentStatusSucceeded      = "succeeded"
	IntentStatusProcessing     = "processing"
	IntentStatusRequiresAction = "requires_action"
)

// PaymentIntent is the processor's handle for an in-progress payment
// attempt. Amounts are in the currency's minor unit (paise for INR).
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountMinorUnits int64, currency string) (*PaymentIntent, error)
	RetrieveIntent(ctx context.Context, intentID string) (*PaymentIntent, error)
}

// MockPaymentGateway simulates the processor for local development and
// tests. Created intents start as processing and report succeeded once
// retrieved after Complete has been called.
type MockPaymentGateway struct {
	completed map[string]bool
}

func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{completed: make(map[string]bool)}
}

func (m *MockPaymentGateway) CreateIntent(_ context.Context, amountMinorUnits int64, currency string) (*PaymentIntent, error) {
	id := fmt.Sprintf("pi_mock_%s", uuid.New().String()[:8])
	log.Printf("Mock payment gateway: intent created: %s amount=%d %s", id, amountMinorUnits, currency)

	return &PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret_" + uuid.New().String()[:8],
		Status:       IntentStatusProcessing,
		Amount:       amountMinorUnits,
		Currency:     currency,
	}, nil
}

func (m *MockPaymentGateway) RetrieveIntent(_ context.Context, intentID string) (*PaymentIntent, error) {
	status := IntentStatusProcessing
	if m.completed[intentID] {
		status = IntentStatusSucceeded
	}
	return &PaymentIntent{ID: intentID, Status: status}, nil
}

// Complete marks a mock intent as paid, as if the customer had finished
// the off-system payment step.
func (m *MockPaymentGateway) Complete(intentID string) {
	m.completed[intentID] = true
}

var _ PaymentGateway = (*MockPaymentGateway)(nil)

// retryDelay spaces the bounded retries around processor calls.
const retryDelay = time.Second
