package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRedis_UnavailableBypasses(t *testing.T) {
	ctx := context.Background()
	r := NewFromClient(nil, time.Minute, nil)

	require.False(t, r.Available())
	require.ErrorIs(t, r.Ping(ctx), ErrUnavailable)

	var out map[string]any
	hit, err := r.GetJSON(ctx, "k", &out)
	require.NoError(t, err)
	require.False(t, hit)

	require.NoError(t, r.SetJSON(ctx, "k", map[string]int{"a": 1}, 0))
	require.NoError(t, r.Delete(ctx, "k"))

	ok, err := r.SetIfNotExists(ctx, "k", "v", 0)
	require.NoError(t, err)
	require.True(t, ok)

	d, err := r.Allow(ctx, Bucket{Name: "checkout", Requests: 1, Window: time.Minute}, "u1")
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.NoError(t, r.Close())
}

func TestRedis_NilReceiver(t *testing.T) {
	var r *Redis
	hit, err := r.GetJSON(context.Background(), "k", &struct{}{})
	require.NoError(t, err)
	require.False(t, hit)
}
