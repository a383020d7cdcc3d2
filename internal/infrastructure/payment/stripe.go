package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	pkgerrors "github.com/luminaphoto/lumina/pkg/errors"
	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"
)

// StripeProvider implements Provider against Stripe Checkout.
type StripeProvider struct {
	webhookSecret string
}

// NewStripeProvider configures the global stripe backend with a bounded
// HTTP timeout. A provider call that times out surfaces as an error and
// is treated upstream as "not yet paid".
func NewStripeProvider(apiKey, webhookSecret string, timeout time.Duration) *StripeProvider {
	stripe.Key = apiKey
	stripe.SetBackend(stripe.APIBackend, stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient: &http.Client{Timeout: timeout},
	}))
	return &StripeProvider{webhookSecret: webhookSecret}
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func fromCents(amount int64) float64 {
	return float64(amount) / 100
}

func (p *StripeProvider) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Items))
	for _, item := range req.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(req.Currency),
				UnitAmount: stripe.Int64(toCents(item.UnitPrice)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
			Quantity: stripe.Int64(1),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		LineItems:  lineItems,
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := session.New(params)
	if err != nil {
		slog.Error("failed to create stripe checkout session", "error", err)
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &Session{SessionID: sess.ID, URL: sess.URL}, nil
}

func (p *StripeProvider) GetStatus(ctx context.Context, sessionID string) (*Status, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := session.Get(sessionID, params)
	if err != nil {
		slog.Error("failed to get stripe session status", "session_id", sessionID, "error", err)
		return nil, fmt.Errorf("failed to get session status: %w", err)
	}

	return &Status{
		Status:        string(sess.Status),
		PaymentStatus: string(sess.PaymentStatus),
		AmountTotal:   fromCents(sess.AmountTotal),
		Currency:      string(sess.Currency),
	}, nil
}

// VerifyCallback authenticates a webhook payload against the endpoint
// secret. Any signature or parse failure is a hard rejection with no
// state change; Stripe's own retry policy redelivers.
func (p *StripeProvider) VerifyCallback(payload []byte, signature string) (*CallbackResult, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		slog.Warn("stripe webhook verification failed", "error", err)
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrCallbackAuthenticity, err)
	}

	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
	default:
		// Authentic but not a session event; nothing to reconcile.
		return &CallbackResult{}, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrCallbackAuthenticity, err)
	}

	return &CallbackResult{
		SessionID:     sess.ID,
		PaymentStatus: string(sess.PaymentStatus),
	}, nil
}
