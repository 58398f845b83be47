package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"careerconnect/internal/infrastructure/upstream"
	"careerconnect/internal/pkg/session"

	"github.com/stretchr/testify/require"
)

type stubUpstream struct {
	calls int
	resp  *upstream.Response
	err   error
	paths []string
}

func (s *stubUpstream) Do(_ context.Context, req upstream.Request) (*upstream.Response, error) {
	s.calls++
	s.paths = append(s.paths, req.Path)
	return s.resp, s.err
}

type memCache struct {
	data map[string][]any
}

func (m *memCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	v, ok := m.data[key]
	if !ok {
		return false, nil
	}
	*(out.(*[]any)) = v
	return true, nil
}

func (m *memCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	if m.data == nil {
		m.data = map[string][]any{}
	}
	m.data[key] = value.([]any)
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *memCache) SetIfNotExists(context.Context, string, string, time.Duration) (bool, error) {
	return true, nil
}

func TestFeed_AnnouncementsPassThroughAndCache(t *testing.T) {
	up := &stubUpstream{resp: &upstream.Response{Status: 200, Body: []byte(`{"success":true,"data":[{"id":1}]}`)}}
	cache := &memCache{}
	uc := NewFeedUsecase(up, cache, time.Minute, nil)

	items, err := uc.Announcements(context.Background(), &session.Credentials{AccessToken: "t"})
	require.NoError(t, err)
	require.Len(t, items, 1)

	items, err = uc.Announcements(context.Background(), &session.Credentials{AccessToken: "t"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 1, up.calls)
}

func TestFeed_EmptyAndFailuresDegrade(t *testing.T) {
	cases := map[string]*stubUpstream{
		"not found": {resp: &upstream.Response{Status: 404, Empty: true}},
		"api error": {err: &upstream.APIError{Status: http.StatusBadGateway}},
		"transport": {err: &upstream.TransportError{Method: "GET", Path: "/x", Err: errors.New("refused")}},
		"odd body":  {resp: &upstream.Response{Status: 200, Body: []byte(`"hello"`)}},
		"no data":   {resp: &upstream.Response{Status: 200, Body: []byte(`{"success":true}`)}},
	}
	for name, up := range cases {
		t.Run(name, func(t *testing.T) {
			uc := NewFeedUsecase(up, nil, time.Minute, nil)
			items, err := uc.Notifications(context.Background(), "u1", nil)
			require.NoError(t, err)
			require.NotNil(t, items)
			require.Empty(t, items)
			require.Equal(t, []string{"/api/notifications/u1"}, up.paths)
		})
	}
}

func TestFeed_AuthErrorSurfaces(t *testing.T) {
	up := &stubUpstream{err: &upstream.AuthError{Status: http.StatusUnauthorized}}
	uc := NewFeedUsecase(up, nil, time.Minute, nil)

	_, err := uc.Announcements(context.Background(), nil)
	require.True(t, upstream.IsAuth(err))
}

func TestExtractList(t *testing.T) {
	require.Len(t, extractList([]byte(`[1,2]`)), 2)
	require.Len(t, extractList([]byte(`{"data":{"items":[1,2,3]}}`)), 3)
	require.Empty(t, extractList([]byte(`not json`)))
}
