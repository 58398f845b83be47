package app

import (
	"context"
	"time"

	"careerconnect/internal/config"
	"careerconnect/internal/database"
	dbpostgres "careerconnect/internal/database/postgres"
	"careerconnect/internal/infrastructure/cache"
	"careerconnect/internal/infrastructure/payment"
	"careerconnect/internal/infrastructure/upstream"
	"careerconnect/internal/logging"
	"careerconnect/internal/pkg/jwt"
	"careerconnect/internal/repository"
	"careerconnect/internal/usecase"
	"careerconnect/internal/usecase/onboarding"
	"careerconnect/internal/ws"

	"go.uber.org/zap"
)

// Container owns every long-lived dependency. DB is nil when Postgres is not
// configured, in which case the cart routes are not mounted.
type Container struct {
	Config config.Config
	Logger *zap.Logger

	DB       database.DB
	Redis    *cache.Redis
	Upstream *upstream.Client
	JWT      jwt.Service
	Hub      *ws.Hub

	Onboarding *onboarding.Manager
	Feed       *usecase.FeedUsecase
	Cart       *usecase.CartUsecase
}

func NewContainer(cfg config.Config, logger *zap.Logger) (*Container, error) {
	logger = logging.OrNop(logger)
	c := &Container{Config: cfg, Logger: logger}

	if cfg.Database.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		db, err := dbpostgres.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		c.DB = db
	} else {
		logger.Warn("database not configured, cart and checkout disabled")
	}

	c.Redis = cache.NewRedis(cfg.Redis, logger)
	c.Upstream = upstream.New(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, upstream.WithLogger(logger))
	c.JWT = jwt.NewHMACService(cfg.JWT.AccessSecret, 0)
	c.Hub = ws.NewHub(logger)

	c.Onboarding = onboarding.NewManager(
		onboarding.NewUpstreamGateway(c.Upstream),
		c.Hub,
		cfg.Onboarding.SessionTTL,
		logger,
	)
	c.Feed = usecase.NewFeedUsecase(c.Upstream, c.Redis, cfg.Redis.CacheTTL, logger)

	if c.DB != nil {
		c.Cart = usecase.NewCartUsecase(
			repository.NewPostgresCartRepository(c.DB),
			repository.NewPostgresOrderRepository(c.DB),
			payment.NewStripe(cfg.Stripe),
			c.Redis,
			c.Redis,
			cfg.Stripe.Currency,
			logger,
		)
	}

	return c, nil
}

// Start launches the background loops. They stop when ctx is done.
func (c *Container) Start(ctx context.Context) {
	go c.Hub.Run(ctx)
	go c.Onboarding.Run(ctx)
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Onboarding != nil {
		c.Onboarding.Shutdown()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
