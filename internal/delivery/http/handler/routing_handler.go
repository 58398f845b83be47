package handler

import (
	"careerconnect/internal/delivery/http/middleware"
	"careerconnect/internal/domain/role"
	"careerconnect/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type RoutingHandler struct{}

func NewRoutingHandler() *RoutingHandler {
	return &RoutingHandler{}
}

type destinationResponse struct {
	Role       role.Role `json:"role"`
	Path       string    `json:"path"`
	Onboarding bool      `json:"onboarding"`
}

func (h *RoutingHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/routing/destination", h.Destination)
}

func (h *RoutingHandler) Destination(c fiber.Ctx) error {
	r := middleware.Role(c)
	path, onboarding := role.Destination(r, middleware.Onboarded(c))
	return response.Success(c, fiber.StatusOK, response.MessageOK, destinationResponse{
		Role:       r,
		Path:       path,
		Onboarding: onboarding,
	})
}
