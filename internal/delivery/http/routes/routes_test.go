package routes

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"careerconnect/internal/delivery/http/handler"
	"careerconnect/internal/delivery/http/middleware"
	"careerconnect/internal/infrastructure/upstream"
	"careerconnect/internal/pkg/jwt"
	"careerconnect/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) (*fiber.App, *jwt.HMACService) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"data":[]}`)
	}))
	t.Cleanup(srv.Close)

	tokens := jwt.NewHMACService("secret", time.Hour)
	feed := usecase.NewFeedUsecase(upstream.New(srv.URL, time.Second), nil, time.Minute, nil)

	app := fiber.New()
	app.Use(middleware.NewErrorMiddleware(nil).Middleware())
	NewRegistry(Handlers{
		Health:  handler.NewHealthHandler(map[string]handler.Pinger{"redis": nil}),
		Routing: handler.NewRoutingHandler(),
		Feed:    handler.NewFeedHandler(feed),
		Auth:    middleware.NewAuthMiddleware(tokens),
	}).Register(app)
	return app, tokens
}

func get(t *testing.T, app *fiber.App, path, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func TestRegister_FeedIsNotBehindLocalVerification(t *testing.T) {
	app, _ := newApp(t)

	status, body := get(t, app, "/api/announcements", "opaque-upstream-token")
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"success":true,"data":[]}`, body)
}

func TestRegister_ProtectedRoutesNeedAValidToken(t *testing.T) {
	app, tokens := newApp(t)

	status, _ := get(t, app, "/api/routing/destination", "")
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = get(t, app, "/api/routing/destination", "opaque-upstream-token")
	require.Equal(t, http.StatusUnauthorized, status)

	tok, err := tokens.GenerateAccessToken(jwt.Identity{UserID: "u-1", Role: "recruiter"})
	require.NoError(t, err)
	status, body := get(t, app, "/api/routing/destination", tok)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"status":200,"message":"ok","data":{"role":"recruiter","path":"/onboarding/recruiter","onboarding":true}}`, body)
}

func TestRegister_Health(t *testing.T) {
	app, _ := newApp(t)

	status, body := get(t, app, "/health", "")
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"status":200,"message":"ok","data":{"redis":"disabled"}}`, body)
}
