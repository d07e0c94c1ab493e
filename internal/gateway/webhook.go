package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shif13/shinab/internal/domain"
)

// Webhook event types consumed from the processor.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// WebhookEvent is the processor's event envelope, decoded after the
// signature has been verified.
type WebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object PaymentIntent `json:"object"`
	} `json:"data"`
}

// signatureTolerance bounds how stale a signed timestamp may be; older
// headers are treated as replays.
const signatureTolerance = 5 * time.Minute

// VerifyWebhookSignature checks the Stripe-Signature header against the
// shared webhook secret. The header carries a unix timestamp and one or
// more v1 HMAC-SHA256 signatures over "<timestamp>.<payload>". Any failure
// returns domain.ErrSignatureInvalid; callers must not touch state before
// this passes.
func VerifyWebhookSignature(payload []byte, header, secret string) error {
	return verifyWebhookSignatureAt(payload, header, secret, time.Now())
}

func verifyWebhookSignatureAt(payload []byte, header, secret string, now time.Time) error {
	if header == "" {
		return fmt.Errorf("%w: missing signature header", domain.ErrSignatureInvalid)
	}

	var timestamp int64
	var signatures [][]byte

	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("%w: malformed timestamp", domain.ErrSignatureInvalid)
			}
			timestamp = ts
		case "v1":
			sig, err := hex.DecodeString(value)
			if err != nil {
				continue
			}
			signatures = append(signatures, sig)
		}
	}

	if timestamp == 0 || len(signatures) == 0 {
		return fmt.Errorf("%w: incomplete signature header", domain.ErrSignatureInvalid)
	}

	age := now.Sub(time.Unix(timestamp, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", domain.ErrSignatureInvalid)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, sig := range signatures {
		if hmac.Equal(expected, sig) {
			return nil
		}
	}

	return fmt.Errorf("%w: no matching signature", domain.ErrSignatureInvalid)
}

// ParseWebhookEvent verifies the signature and decodes the event payload.
func ParseWebhookEvent(payload []byte, header, secret string) (*WebhookEvent, error) {
	if err := VerifyWebhookSignature(payload, header, secret); err != nil {
		return nil, err
	}

	event := &WebhookEvent{}
	if err := json.Unmarshal(payload, event); err != nil {
		return nil, fmt.Errorf("%w: malformed event payload", domain.ErrValidationFailed)
	}
	return event, nil
}
