package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_NAME", "careerconnect")
	t.Setenv("APP_ENV", "test")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("UPSTREAM_BASE_URL", "http://upstream.local/")
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("APP_NAME", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("HTTP_PORT", "")
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("UPSTREAM_BASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMissingRequiredEnv))
	require.Contains(t, err.Error(), "UPSTREAM_BASE_URL")
	require.Contains(t, err.Error(), "JWT_ACCESS_SECRET")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("REDIS_HOST", "")
	t.Setenv("REDIS_PORT", "")
	t.Setenv("REDIS_TTL", "")
	t.Setenv("STRIPE_CURRENCY", "")
	t.Setenv("ONBOARDING_SESSION_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://upstream.local", cfg.Upstream.BaseURL)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
	require.Equal(t, 60*time.Second, cfg.Redis.CacheTTL)
	require.Equal(t, "usd", cfg.Stripe.Currency)
	require.Equal(t, 2*time.Hour, cfg.Onboarding.SessionTTL)
	require.Equal(t, 10*time.Second, cfg.Upstream.Timeout)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_TTL", "30")
	t.Setenv("UPSTREAM_TIMEOUT", "3")
	t.Setenv("DB_POOL_MAX_CONNS", "12")
	t.Setenv("STRIPE_CURRENCY", "EUR")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "cache:6380", cfg.Redis.Addr)
	require.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
	require.Equal(t, 3*time.Second, cfg.Upstream.Timeout)
	require.EqualValues(t, 12, cfg.Database.PoolMaxConns)
	require.Equal(t, "eur", cfg.Stripe.Currency)
}
