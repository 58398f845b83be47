package handler

import (
	"errors"
	"strconv"
	"time"

	"careerconnect/internal/delivery/http/middleware"
	"careerconnect/internal/domain/cart"
	"careerconnect/internal/infrastructure/payment"
	"careerconnect/internal/pkg/response"
	"careerconnect/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type CartHandler struct {
	uc *usecase.CartUsecase
}

func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type cartItemResponse struct {
	ID         uuid.UUID `json:"id"`
	ProductID  string    `json:"product_id"`
	Name       string    `json:"name"`
	UnitAmount int64     `json:"unit_amount"`
	Quantity   int       `json:"quantity"`
	Subtotal   int64     `json:"subtotal"`
}

type cartResponse struct {
	Items    []cartItemResponse `json:"items"`
	Total    int64              `json:"total"`
	Currency string             `json:"currency"`
}

type checkoutResponse struct {
	URL     string `json:"url"`
	OrderID string `json:"order_id"`
}

// RegisterRoutes mounts the authenticated cart routes.
func (h *CartHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/cart", h.Get)
	r.Post("/cart/items", h.AddItem)
	r.Delete("/cart/items/:id", h.RemoveItem)
	r.Post("/checkout", h.Checkout)
}

// RegisterWebhook mounts the provider callback, which carries no user token.
func (h *CartHandler) RegisterWebhook(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/payments/stripe/webhook", h.Webhook)
}

func toItemResponse(it cart.Item) cartItemResponse {
	return cartItemResponse{
		ID:         it.ID,
		ProductID:  it.ProductID,
		Name:       it.Name,
		UnitAmount: it.UnitAmount,
		Quantity:   it.Quantity,
		Subtotal:   it.Subtotal(),
	}
}

func (h *CartHandler) Get(c fiber.Ctx) error {
	view, err := h.uc.List(c.Context(), middleware.UserID(c))
	if err != nil {
		return response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError, nil)
	}

	items := make([]cartItemResponse, 0, len(view.Items))
	for _, it := range view.Items {
		items = append(items, toItemResponse(it))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, cartResponse{Items: items, Total: view.Total, Currency: view.Currency})
}

func (h *CartHandler) AddItem(c fiber.Ctx) error {
	var req usecase.AddItemInput
	if err := c.Bind().Body(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, response.MessageBadRequest, nil)
	}

	it, err := h.uc.AddItem(c.Context(), middleware.UserID(c), req)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidInput) {
			return response.Error(c, fiber.StatusBadRequest, response.MessageBadRequest, nil)
		}
		return response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError, nil)
	}
	return response.Success(c, fiber.StatusCreated, "Item added to cart", toItemResponse(it))
}

func (h *CartHandler) RemoveItem(c fiber.Ctx) error {
	err := h.uc.RemoveItem(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			return response.Error(c, fiber.StatusNotFound, "Cart item not found", nil)
		}
		return response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError, nil)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CartHandler) Checkout(c fiber.Ctx) error {
	res, err := h.uc.Checkout(c.Context(), middleware.UserID(c))
	if err != nil {
		var rl *usecase.RateLimitError
		switch {
		case errors.As(err, &rl):
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(rl.RetryAfter.Round(time.Second)/time.Second)))
			return response.Error(c, fiber.StatusTooManyRequests, "You're being rate limited!", nil)
		case errors.Is(err, usecase.ErrCartEmpty):
			return response.Error(c, fiber.StatusUnprocessableEntity, "Cart is empty", nil)
		case errors.Is(err, payment.ErrNotConfigured):
			return response.Error(c, fiber.StatusServiceUnavailable, "Payments are not available", nil)
		default:
			return middleware.NewAppError(fiber.StatusInternalServerError, "", nil, err)
		}
	}
	return response.Success(c, fiber.StatusOK, "Checkout session created", checkoutResponse{URL: res.URL, OrderID: res.OrderID})
}

func (h *CartHandler) Webhook(c fiber.Ctx) error {
	err := h.uc.HandleWebhook(c.Context(), c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrInvalidSignature):
			return response.Error(c, fiber.StatusBadRequest, "Invalid signature", nil)
		case errors.Is(err, payment.ErrNotConfigured):
			return response.Error(c, fiber.StatusServiceUnavailable, "Payments are not available", nil)
		default:
			return middleware.NewAppError(fiber.StatusInternalServerError, "", nil, err)
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}
