package session

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	cases := []struct {
		in   string
		tok  string
		want bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer  abc ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"Bearer   ", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		tok, ok := BearerToken(tc.in)
		require.Equal(t, tc.want, ok, tc.in)
		require.Equal(t, tc.tok, tok, tc.in)
	}
}

func TestFromRequest(t *testing.T) {
	app := fiber.New()
	var got *Credentials
	app.Get("/", func(c fiber.Ctx) error {
		got = FromRequest(c)
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	req.Header.Set("Cookie", "token=cookie-token; refreshToken=refresh-cookie")
	_, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, "header-token", got.AccessToken)
	require.Equal(t, "refresh-cookie", got.RefreshToken)
	require.True(t, got.Present())

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Cookie", "token=cookie-token")
	req.Header.Set(RefreshHeader, "refresh-header")
	_, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, "cookie-token", got.AccessToken)
	require.Equal(t, "refresh-header", got.RefreshToken)

	req = httptest.NewRequest("GET", "/", nil)
	_, err = app.Test(req)
	require.NoError(t, err)
	require.False(t, got.Present())
}

func TestRotate(t *testing.T) {
	var nilCreds *Credentials
	require.False(t, nilCreds.Present())
	require.False(t, nilCreds.Refreshed())

	c := &Credentials{AccessToken: "old"}
	require.False(t, c.Refreshed())
	c.Rotate("new")
	require.True(t, c.Refreshed())
	require.Equal(t, "new", c.AccessToken)
}
