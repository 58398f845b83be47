package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewHMACService("secret", time.Hour)

	tok, err := svc.GenerateAccessToken(Identity{UserID: "u-1", Email: "a@b.c", Role: "recruiter"})
	require.NoError(t, err)

	c, err := svc.ValidateToken(tok)
	require.NoError(t, err)
	require.Equal(t, "u-1", c.UserID)
	require.Equal(t, "recruiter", c.Role)
	require.False(t, c.Onboarded)
}

func TestValidate_Expired(t *testing.T) {
	svc := NewHMACService("secret", time.Minute)
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }

	tok, err := svc.GenerateAccessToken(Identity{UserID: "u-1"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(tok)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidate_WrongSecret(t *testing.T) {
	tok, err := NewHMACService("right", time.Hour).GenerateAccessToken(Identity{UserID: "u-1"})
	require.NoError(t, err)

	_, err = NewHMACService("wrong", time.Hour).ValidateToken(tok)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidate_SubjectFallback(t *testing.T) {
	secret := []byte("secret")
	tok, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub":  "u-sub",
		"role": "student",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString(secret)
	require.NoError(t, err)

	c, err := NewHMACService("secret", time.Hour).ValidateToken(tok)
	require.NoError(t, err)
	require.Equal(t, "u-sub", c.UserID)
	require.Equal(t, "student", c.Role)
}

func TestValidate_Garbage(t *testing.T) {
	_, err := NewHMACService("secret", time.Hour).ValidateToken("not-a-token")
	require.ErrorIs(t, err, ErrTokenInvalid)

	_, err = NewHMACService("", time.Hour).ValidateToken("x")
	require.ErrorIs(t, err, ErrTokenInvalid)
}
