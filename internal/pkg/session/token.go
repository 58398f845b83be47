// Package session reads and writes the caller's credentials on a request.
package session

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
)

const (
	AccessCookie  = "token"
	RefreshCookie = "refreshToken"

	RefreshHeader = "X-Refresh-Token"
)

// Credentials holds the bearer token pair forwarded upstream. An empty
// AccessToken means the caller is anonymous.
type Credentials struct {
	AccessToken  string
	RefreshToken string

	refreshed bool
}

func (c *Credentials) Present() bool {
	return c != nil && c.AccessToken != ""
}

// Rotate replaces the access token after a successful refresh.
func (c *Credentials) Rotate(access string) {
	if c == nil {
		return
	}
	c.AccessToken = access
	c.refreshed = true
}

// Refreshed reports whether Rotate was called since the credentials were read.
func (c *Credentials) Refreshed() bool {
	return c != nil && c.refreshed
}

// FromRequest reads the access token from the Authorization header, falling
// back to the token cookie, and the refresh token from its header or cookie.
func FromRequest(c fiber.Ctx) *Credentials {
	creds := &Credentials{}
	if c == nil {
		return creds
	}

	if tok, ok := BearerToken(c.Get(fiber.HeaderAuthorization)); ok {
		creds.AccessToken = tok
	} else {
		creds.AccessToken = strings.TrimSpace(c.Cookies(AccessCookie))
	}

	creds.RefreshToken = strings.TrimSpace(c.Get(RefreshHeader))
	if creds.RefreshToken == "" {
		creds.RefreshToken = strings.TrimSpace(c.Cookies(RefreshCookie))
	}

	return creds
}

// Store writes a refreshed access token back to the client as a cookie.
// Untouched credentials are not written.
func Store(c fiber.Ctx, creds *Credentials, ttl time.Duration) {
	if c == nil || !creds.Refreshed() {
		return
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	c.Cookie(&fiber.Cookie{
		Name:     AccessCookie,
		Value:    creds.AccessToken,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func BearerToken(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
