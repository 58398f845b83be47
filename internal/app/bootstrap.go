package app

import (
	"context"
	"fmt"
	"strings"

	"careerconnect/internal/config"
	"careerconnect/internal/delivery/http/handler"
	"careerconnect/internal/delivery/http/middleware"
	"careerconnect/internal/delivery/http/routes"
	"careerconnect/internal/ws"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type App struct {
	Fiber *fiber.App
}

func New(c *Container) *App {
	f := fiber.New(fiber.Config{AppName: c.Config.App.AppName})

	registerGlobalMiddleware(f, c.Logger)
	registerRoutes(f, c)

	return &App{Fiber: f}
}

// Bootstrap builds the container and the HTTP app. The returned cleanup
// stops background loops and closes connections.
func Bootstrap(cfg config.Config, logger *zap.Logger) (*App, func() error, error) {
	c, err := NewContainer(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)

	app := New(c)
	cleanup := func() error {
		cancel()
		return c.Close()
	}
	return app, cleanup, nil
}

func registerGlobalMiddleware(app *fiber.App, logger *zap.Logger) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(logger).Middleware())
	app.Use(middleware.NewErrorMiddleware(logger).Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil || c == nil {
		return
	}

	deps := map[string]handler.Pinger{"redis": nil, "postgres": nil}
	if c.Redis.Available() {
		deps["redis"] = c.Redis
	}
	if c.DB != nil {
		deps["postgres"] = c.DB
	}

	reg := routes.Handlers{
		Health:     handler.NewHealthHandler(deps),
		Routing:    handler.NewRoutingHandler(),
		Feed:       handler.NewFeedHandler(c.Feed),
		Onboarding: handler.NewOnboardingHandler(c.Onboarding),
		WS:         ws.NewHandler(c.Hub, c.Logger),
		Auth:       middleware.NewAuthMiddleware(c.JWT),
	}
	if c.Cart != nil {
		reg.Cart = handler.NewCartHandler(c.Cart)
	}
	routes.NewRegistry(reg).Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
