package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"careerconnect/internal/config"
	"careerconnect/internal/domain/cart"

	jsoniter "github.com/json-iterator/go"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
	"github.com/stripe/stripe-go/v75/webhook"
)

var (
	ErrNotConfigured    = errors.New("payments are not configured")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrEmptyCheckout    = errors.New("checkout has no items")
)

const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
)

type CheckoutRequest struct {
	OrderID  string
	UserID   string
	Currency string
	Items    []cart.Item
}

type CheckoutSession struct {
	ID  string
	URL string
}

// Event is the part of a provider webhook the order flow acts on.
type Event struct {
	ID        string
	Type      string
	SessionID string
	OrderID   string
	Paid      bool
}

type Stripe struct {
	api           *client.API
	webhookSecret string
	successURL    string
	cancelURL     string
}

func NewStripe(cfg config.StripeConfig) *Stripe {
	s := &Stripe{
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
	}
	if strings.TrimSpace(cfg.SecretKey) != "" {
		s.api = &client.API{}
		s.api.Init(cfg.SecretKey, nil)
	}
	return s
}

func (s *Stripe) CreateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutSession, error) {
	if s == nil || s.api == nil {
		return CheckoutSession{}, ErrNotConfigured
	}
	if len(req.Items) == 0 {
		return CheckoutSession{}, ErrEmptyCheckout
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(req.OrderID),
		SuccessURL:        stripe.String(s.successURL),
		CancelURL:         stripe.String(s.cancelURL),
		LineItems:         lineItems(req),
	}
	params.Context = ctx
	params.AddMetadata("order_id", req.OrderID)
	params.AddMetadata("user_id", req.UserID)

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("create checkout session: %w", err)
	}
	return CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func lineItems(req CheckoutRequest) []*stripe.CheckoutSessionLineItemParams {
	out := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Items))
	for _, it := range req.Items {
		out = append(out, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(req.Currency),
				UnitAmount: stripe.Int64(it.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(it.Name),
				},
			},
			Quantity: stripe.Int64(int64(it.Quantity)),
		})
	}
	return out
}

// ParseWebhook verifies the Stripe-Signature header and extracts the
// checkout session the event refers to.
func (s *Stripe) ParseWebhook(payload []byte, signature string) (Event, error) {
	if s == nil || s.webhookSecret == "" {
		return Event{}, ErrNotConfigured
	}

	evt, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := Event{ID: evt.ID, Type: string(evt.Type)}
	if !strings.HasPrefix(out.Type, "checkout.session.") || evt.Data == nil {
		return out, nil
	}

	var sess stripe.CheckoutSession
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(evt.Data.Raw, &sess); err != nil {
		return Event{}, fmt.Errorf("decode checkout session: %w", err)
	}
	out.SessionID = sess.ID
	out.OrderID = sess.ClientReferenceID
	if id := sess.Metadata["order_id"]; id != "" {
		out.OrderID = id
	}
	out.Paid = sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid ||
		sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired
	return out, nil
}
