package middleware

import (
	"errors"

	"careerconnect/internal/domain/role"
	"careerconnect/internal/pkg/jwt"
	"careerconnect/internal/pkg/response"
	"careerconnect/internal/pkg/session"

	"github.com/gofiber/fiber/v3"
)

const (
	CtxUserIDKey    = "user_id"
	CtxEmailKey     = "email"
	CtxRoleKey      = "role"
	CtxOnboardedKey = "onboarded"
	CtxCredsKey     = "credentials"
)

const MessageAuthRequired = response.MessageAuthRequired

type AuthMiddleware struct {
	jwt jwt.Service
}

func NewAuthMiddleware(jwtSvc jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwtSvc}
}

// Middleware verifies the access token locally and exposes its claims.
func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		creds := session.FromRequest(c)
		if !creds.Present() {
			return NewAppError(fiber.StatusUnauthorized, MessageAuthRequired, nil, nil)
		}

		claims, err := m.jwt.ValidateToken(creds.AccessToken)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return NewAppError(fiber.StatusUnauthorized, "Token expired", nil, err)
			}
			return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, err)
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxEmailKey, claims.Email)
		c.Locals(CtxRoleKey, role.Parse(claims.Role))
		c.Locals(CtxOnboardedKey, claims.Onboarded)
		c.Locals(CtxCredsKey, creds)

		return c.Next()
	}
}

// RequireToken only checks that a bearer token is present; the upstream
// backend does the verification. It answers with the bare proxy error body.
func RequireToken() fiber.Handler {
	return func(c fiber.Ctx) error {
		creds := session.FromRequest(c)
		if !creds.Present() {
			return response.AuthRequired(c)
		}
		c.Locals(CtxCredsKey, creds)
		return c.Next()
	}
}

// QueryToken promotes a token passed as a query parameter to a bearer
// header. Browsers cannot set headers on a websocket handshake.
func QueryToken(param string) fiber.Handler {
	return func(c fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			if tok := c.Query(param); tok != "" {
				c.Request().Header.Set(fiber.HeaderAuthorization, "Bearer "+tok)
			}
		}
		return c.Next()
	}
}

// Credentials returns the request credentials stored by either middleware.
func Credentials(c fiber.Ctx) *session.Credentials {
	if creds, ok := c.Locals(CtxCredsKey).(*session.Credentials); ok {
		return creds
	}
	return session.FromRequest(c)
}

func UserID(c fiber.Ctx) string {
	v, _ := c.Locals(CtxUserIDKey).(string)
	return v
}

func Role(c fiber.Ctx) role.Role {
	v, _ := c.Locals(CtxRoleKey).(role.Role)
	return v
}

func Onboarded(c fiber.Ctx) bool {
	v, _ := c.Locals(CtxOnboardedKey).(bool)
	return v
}
