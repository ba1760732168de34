package services

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
	"github.com/stripe/stripe-go/v80/webhook"
)

// StripeService wraps the Stripe API surface the order flow needs: creating
// payment intents and parsing inbound webhooks.
type StripeService struct {
	SecretKey  string
	WebhookKey string
}

func NewStripeService(secretKey, webhookKey string) *StripeService {
	stripe.Key = secretKey
	return &StripeService{SecretKey: secretKey, WebhookKey: webhookKey}
}

// IsConfigured reports whether a Stripe API key is available.
func (s *StripeService) IsConfigured() bool {
	return s.SecretKey != ""
}

// CreatePaymentIntent creates a card payment intent for the given amount in
// major currency units. The order id travels in the intent metadata so the
// webhook can find its way back to the order.
func (s *StripeService) CreatePaymentIntent(amount float64, currency, orderID string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(int64(amount*100 + 0.5)), // convert to cents
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	if orderID != "" {
		params.AddMetadata("order_id", orderID)
	}
	return paymentintent.New(params)
}

// ParseWebhook reads and verifies an inbound Stripe event. When no webhook
// secret is configured the payload is accepted without signature
// verification; that mode is for local development only.
func (s *StripeService) ParseWebhook(r *http.Request) (stripe.Event, error) {
	var event stripe.Event
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return event, err
	}
	r.Body = io.NopCloser(bytes.NewBuffer(payload))

	if s.WebhookKey == "" {
		err := json.Unmarshal(payload, &event)
		return event, err
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	return webhook.ConstructEvent(payload, sigHeader, s.WebhookKey)
}
