package handler

import (
	"context"
	"time"

	"careerconnect/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	deps map[string]Pinger
}

// NewHealthHandler reports on each named dependency. Nil pingers are listed
// as disabled.
func NewHealthHandler(deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{deps: deps}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Health)
}

func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.deps))
	healthy := true
	for name, p := range h.deps {
		switch {
		case p == nil:
			checks[name] = "disabled"
		case p.Ping(ctx) != nil:
			checks[name] = "down"
			healthy = false
		default:
			checks[name] = "up"
		}
	}

	if !healthy {
		return response.Error(c, fiber.StatusServiceUnavailable, "degraded", checks)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, checks)
}
