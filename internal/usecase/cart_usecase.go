package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"careerconnect/internal/domain/cart"
	"careerconnect/internal/infrastructure/cache"
	"careerconnect/internal/infrastructure/payment"
	"careerconnect/internal/logging"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrCartEmpty    = errors.New("cart is empty")
)

// RateLimitError means the caller exhausted a bucket.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

var CheckoutBucket = cache.Bucket{Name: "checkout", Requests: 5, Window: time.Minute}

const processedEventTTL = 72 * time.Hour

type PaymentGateway interface {
	CreateCheckout(ctx context.Context, req payment.CheckoutRequest) (payment.CheckoutSession, error)
	ParseWebhook(payload []byte, signature string) (payment.Event, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, bucket cache.Bucket, id string) (cache.Decision, error)
}

type AddItemInput struct {
	ProductID  string `json:"product_id" validate:"required,max=64"`
	Name       string `json:"name" validate:"required,max=200"`
	UnitAmount int64  `json:"unit_amount" validate:"gt=0"`
	Quantity   int    `json:"quantity" validate:"gte=1,lte=99"`
}

type CartView struct {
	Items    []cart.Item
	Total    int64
	Currency string
}

type CheckoutResult struct {
	OrderID string
	URL     string
}

type CartUsecase struct {
	items    cart.Repository
	orders   cart.OrderRepository
	payments PaymentGateway
	limiter  RateLimiter
	events   Cache
	currency string
	logger   *zap.Logger
	validate *validator.Validate
}

func NewCartUsecase(
	items cart.Repository,
	orders cart.OrderRepository,
	payments PaymentGateway,
	limiter RateLimiter,
	events Cache,
	currency string,
	logger *zap.Logger,
) *CartUsecase {
	if currency == "" {
		currency = "usd"
	}
	return &CartUsecase{
		items:    items,
		orders:   orders,
		payments: payments,
		limiter:  limiter,
		events:   events,
		currency: currency,
		logger:   logging.OrNop(logger),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (u *CartUsecase) List(ctx context.Context, userID string) (CartView, error) {
	items, err := u.items.ListItems(ctx, userID)
	if err != nil {
		return CartView{}, err
	}
	return CartView{Items: items, Total: cart.Total(items), Currency: u.currency}, nil
}

func (u *CartUsecase) AddItem(ctx context.Context, userID string, in AddItemInput) (cart.Item, error) {
	in.ProductID = strings.TrimSpace(in.ProductID)
	in.Name = strings.TrimSpace(in.Name)
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if err := u.validate.Struct(in); err != nil {
		return cart.Item{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return u.items.AddItem(ctx, cart.Item{
		UserID:     userID,
		ProductID:  in.ProductID,
		Name:       in.Name,
		UnitAmount: in.UnitAmount,
		Quantity:   in.Quantity,
	})
}

func (u *CartUsecase) RemoveItem(ctx context.Context, userID, itemID string) error {
	id, err := uuid.Parse(strings.TrimSpace(itemID))
	if err != nil {
		return cart.ErrItemNotFound
	}
	return u.items.RemoveItem(ctx, userID, id)
}

// Checkout snapshots the cart into a pending order and opens a hosted
// checkout session for it. The ordered lines leave the cart only once
// payment lands.
func (u *CartUsecase) Checkout(ctx context.Context, userID string) (CheckoutResult, error) {
	if u.limiter != nil {
		d, err := u.limiter.Allow(ctx, CheckoutBucket, userID)
		if err != nil {
			u.logger.Warn("checkout rate limiter failed", zap.Error(err))
		}
		if !d.Allowed && err == nil {
			return CheckoutResult{}, &RateLimitError{RetryAfter: d.RetryAfter}
		}
	}

	items, err := u.items.ListItems(ctx, userID)
	if err != nil {
		return CheckoutResult{}, err
	}
	if len(items) == 0 {
		return CheckoutResult{}, ErrCartEmpty
	}

	order := cart.Order{
		ID:          uuid.New(),
		UserID:      userID,
		Status:      cart.OrderPending,
		AmountTotal: cart.Total(items),
		Currency:    u.currency,
		Lines:       cart.LinesOf(items),
	}
	if err := u.orders.Create(ctx, order); err != nil {
		return CheckoutResult{}, err
	}

	sess, err := u.payments.CreateCheckout(ctx, payment.CheckoutRequest{
		OrderID:  order.ID.String(),
		UserID:   userID,
		Currency: u.currency,
		Items:    items,
	})
	if err != nil {
		if _, terr := u.orders.Transition(ctx, order.ID, cart.OrderCancelled); terr != nil {
			u.logger.Error("cancel order after checkout failure", zap.String("order_id", order.ID.String()), zap.Error(terr))
		}
		return CheckoutResult{}, err
	}

	if err := u.orders.AttachCheckoutSession(ctx, order.ID, sess.ID); err != nil {
		return CheckoutResult{}, err
	}

	u.logger.Info("checkout opened",
		zap.String("order_id", order.ID.String()), zap.String("user_id", userID), zap.Int64("amount_total", order.AmountTotal))
	return CheckoutResult{OrderID: order.ID.String(), URL: sess.URL}, nil
}

// HandleWebhook applies a verified provider event. Replays of an event id
// already handled are acknowledged without side effects.
func (u *CartUsecase) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	evt, err := u.payments.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}

	if evt.Type != payment.EventCheckoutCompleted && evt.Type != payment.EventCheckoutExpired {
		u.logger.Debug("payment event ignored", zap.String("type", evt.Type))
		return nil
	}

	dedupeKey := "payments:event:" + evt.ID
	if u.events != nil && evt.ID != "" {
		fresh, err := u.events.SetIfNotExists(ctx, dedupeKey, "1", processedEventTTL)
		if err == nil && !fresh {
			return nil
		}
	}

	if err := u.applyEvent(ctx, evt); err != nil {
		if u.events != nil && evt.ID != "" {
			_ = u.events.Delete(ctx, dedupeKey)
		}
		return err
	}
	return nil
}

func (u *CartUsecase) applyEvent(ctx context.Context, evt payment.Event) error {
	orderID, err := uuid.Parse(evt.OrderID)
	if err != nil {
		u.logger.Warn("payment event without order", zap.String("event_id", evt.ID), zap.String("session_id", evt.SessionID))
		return nil
	}

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, cart.ErrOrderNotFound) {
			u.logger.Warn("payment event for unknown order", zap.String("order_id", evt.OrderID))
			return nil
		}
		return err
	}

	switch evt.Type {
	case payment.EventCheckoutCompleted:
		if !evt.Paid {
			return nil
		}
		moved, err := u.orders.MarkPaid(ctx, order.ID)
		if err != nil {
			return err
		}
		if !moved {
			return nil
		}
		u.logger.Info("order paid", zap.String("order_id", order.ID.String()), zap.String("user_id", order.UserID))

	case payment.EventCheckoutExpired:
		if _, err := u.orders.Transition(ctx, order.ID, cart.OrderCancelled); err != nil {
			return err
		}
		u.logger.Info("order cancelled", zap.String("order_id", order.ID.String()))
	}
	return nil
}
