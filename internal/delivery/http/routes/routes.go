package routes

import (
	"careerconnect/internal/delivery/http/handler"
	"careerconnect/internal/delivery/http/middleware"
	"careerconnect/internal/ws"

	"github.com/gofiber/fiber/v3"
)

// Handlers groups what the registry mounts. Cart may be nil.
type Handlers struct {
	Health     *handler.HealthHandler
	Routing    *handler.RoutingHandler
	Feed       *handler.FeedHandler
	Onboarding *handler.OnboardingHandler
	Cart       *handler.CartHandler
	WS         *ws.Handler
	Auth       *middleware.AuthMiddleware
}

type Registry struct {
	h Handlers
}

func NewRegistry(h Handlers) *Registry {
	return &Registry{h: h}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerRealtime(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.h.Health != nil {
		r.h.Health.RegisterRoutes(app)
	}
}

func (r *Registry) registerRealtime(app *fiber.App) {
	if r.h.WS == nil || r.h.Auth == nil {
		return
	}
	app.Get("/ws/onboarding", middleware.QueryToken("token"), r.h.Auth.Middleware(), r.h.WS.HandleOnboardingWS)
}

// registerAPI mounts public routes before the protected group: the group's
// auth middleware matches every path under /api.
func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")

	if r.h.Feed != nil {
		r.h.Feed.RegisterRoutes(api)
	}
	if r.h.Cart != nil {
		r.h.Cart.RegisterWebhook(api)
	}

	if r.h.Auth == nil {
		return
	}
	protected := api.Group("", r.h.Auth.Middleware())

	if r.h.Routing != nil {
		r.h.Routing.RegisterRoutes(protected)
	}
	if r.h.Onboarding != nil {
		r.h.Onboarding.RegisterRoutes(protected)
	}
	if r.h.Cart != nil {
		r.h.Cart.RegisterRoutes(protected)
	}
}
