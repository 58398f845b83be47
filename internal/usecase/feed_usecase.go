package usecase

import (
	"context"
	"net/url"
	"strings"
	"time"

	"careerconnect/internal/infrastructure/upstream"
	"careerconnect/internal/logging"
	"careerconnect/internal/pkg/session"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

const announcementsCacheKey = "feed:announcements"

// Upstream is the slice of the backend client the proxies need.
type Upstream interface {
	Do(ctx context.Context, req upstream.Request) (*upstream.Response, error)
}

type FeedUsecase struct {
	client Upstream
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewFeedUsecase(client Upstream, cache Cache, ttl time.Duration, logger *zap.Logger) *FeedUsecase {
	return &FeedUsecase{client: client, cache: cache, ttl: ttl, logger: logging.OrNop(logger)}
}

// Announcements returns the announcement list. Only a terminal auth failure
// is returned as an error; every other failure reads as an empty list.
func (u *FeedUsecase) Announcements(ctx context.Context, creds *session.Credentials) ([]any, error) {
	if u.cache != nil {
		var cached []any
		if ok, err := u.cache.GetJSON(ctx, announcementsCacheKey, &cached); err == nil && ok {
			return cached, nil
		}
	}

	items, err := u.fetch(ctx, "/api/announcements", creds)
	if err != nil {
		return nil, err
	}

	if u.cache != nil && len(items) > 0 {
		if err := u.cache.SetJSON(ctx, announcementsCacheKey, items, u.ttl); err != nil {
			u.logger.Debug("announcements cache write failed", zap.Error(err))
		}
	}
	return items, nil
}

func (u *FeedUsecase) Notifications(ctx context.Context, userID string, creds *session.Credentials) ([]any, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return []any{}, nil
	}
	return u.fetch(ctx, "/api/notifications/"+url.PathEscape(userID), creds)
}

func (u *FeedUsecase) fetch(ctx context.Context, path string, creds *session.Credentials) ([]any, error) {
	resp, err := u.client.Do(ctx, upstream.Request{Path: path, Credentials: creds, Optional: true})
	if err != nil {
		if upstream.IsAuth(err) {
			return nil, err
		}
		u.logger.Warn("feed upstream failed, serving empty",
			zap.String("path", path), zap.Int("status", upstream.StatusOf(err)), zap.Error(err))
		return []any{}, nil
	}
	if resp.Empty {
		return []any{}, nil
	}
	return extractList(resp.Body), nil
}

// extractList accepts {success,data:[...]}, {data:{items:[...]}} or a bare
// array. Anything else is empty.
func extractList(body []byte) []any {
	var v any
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(body, &v); err != nil {
		return []any{}
	}
	for i := 0; i < 3; i++ {
		switch t := v.(type) {
		case []any:
			return t
		case map[string]any:
			next, ok := t["data"]
			if !ok {
				next, ok = t["items"]
			}
			if !ok {
				return []any{}
			}
			v = next
		default:
			return []any{}
		}
	}
	return []any{}
}
