package handler

import (
	"careerconnect/internal/delivery/http/middleware"
	"careerconnect/internal/infrastructure/upstream"
	"careerconnect/internal/pkg/response"
	"careerconnect/internal/pkg/session"
	"careerconnect/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// FeedHandler serves the degrade-gracefully proxies. Their bodies are the
// bare {success,data} and {error} shapes, not the semantic envelope.
type FeedHandler struct {
	uc *usecase.FeedUsecase
}

func NewFeedHandler(uc *usecase.FeedUsecase) *FeedHandler {
	return &FeedHandler{uc: uc}
}

func (h *FeedHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/announcements", middleware.RequireToken(), h.Announcements)
	r.Get("/notifications/:userId", middleware.RequireToken(), h.Notifications)
}

func (h *FeedHandler) Announcements(c fiber.Ctx) error {
	creds := middleware.Credentials(c)
	items, err := h.uc.Announcements(c.Context(), creds)
	return h.reply(c, creds, items, err)
}

func (h *FeedHandler) Notifications(c fiber.Ctx) error {
	creds := middleware.Credentials(c)
	items, err := h.uc.Notifications(c.Context(), c.Params("userId"), creds)
	return h.reply(c, creds, items, err)
}

func (h *FeedHandler) reply(c fiber.Ctx, creds *session.Credentials, items []any, err error) error {
	if err != nil && upstream.IsAuth(err) {
		return response.AuthRequired(c)
	}
	session.Store(c, creds, 0)
	return response.List(c, items)
}
