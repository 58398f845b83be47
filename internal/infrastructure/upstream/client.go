package upstream

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"careerconnect/internal/logging"
	"careerconnect/internal/pkg/session"

	mapset "github.com/deckarep/golang-set/v2"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxBodyBytes = 4 << 20

// DefaultOptionalPaths are endpoints the backend may not implement yet; a 404
// from them reads as an empty result.
var DefaultOptionalPaths = []string{"/api/announcements", "/api/notifications/"}

type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        any
	Credentials *session.Credentials

	// Optional marks a single call as degrade-on-404 regardless of its path.
	Optional bool
}

type Response struct {
	Status int
	Body   []byte

	// Empty is set when an optional endpoint answered 404.
	Empty bool
}

func (r *Response) Decode(out any) error {
	if r == nil || len(r.Body) == 0 {
		return io.EOF
	}
	return json.Unmarshal(r.Body, out)
}

// Refresher exchanges a refresh token for a new access token.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

type RefresherFunc func(ctx context.Context, refreshToken string) (string, error)

func (f RefresherFunc) Refresh(ctx context.Context, refreshToken string) (string, error) {
	return f(ctx, refreshToken)
}

// Client calls the upstream REST backend. A 401 triggers exactly one refresh
// followed by exactly one retry; everything else is surfaced to the caller.
type Client struct {
	baseURL   string
	http      *http.Client
	refresher Refresher
	optional  mapset.Set[string]
	logger    *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithRefresher(r Refresher) Option {
	return func(c *Client) {
		if r != nil {
			c.refresher = r
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logging.OrNop(l)
	}
}

func WithOptionalPaths(paths ...string) Option {
	return func(c *Client) {
		c.optional = mapset.NewSet[string](paths...)
	}
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:     &http.Client{Timeout: timeout},
		optional: mapset.NewSet[string](DefaultOptionalPaths...),
		logger:   zap.NewNop(),
	}
	c.refresher = &tokenRefresher{client: c}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c == nil || c.http == nil {
		return nil, ErrNilClient
	}
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	payload, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, req, payload)
	if err != nil {
		return nil, err
	}

	if resp.Status == http.StatusUnauthorized {
		refreshToken := ""
		if req.Credentials != nil {
			refreshToken = req.Credentials.RefreshToken
		}

		access, rerr := c.refresher.Refresh(ctx, refreshToken)
		if rerr != nil {
			c.logger.Warn("upstream token refresh failed",
				zap.String("method", req.Method), zap.String("path", req.Path), zap.Error(rerr))
			return nil, &AuthError{Status: http.StatusUnauthorized, Cause: rerr}
		}
		if req.Credentials == nil {
			req.Credentials = &session.Credentials{}
		}
		req.Credentials.Rotate(access)

		c.logger.Debug("upstream retry after refresh", zap.String("method", req.Method), zap.String("path", req.Path))
		resp, err = c.send(ctx, req, payload)
		if err != nil {
			return nil, err
		}
		if resp.Status == http.StatusUnauthorized {
			return nil, &AuthError{Status: http.StatusUnauthorized}
		}
	}

	return c.classify(req, resp)
}

func (c *Client) classify(req Request, resp *Response) (*Response, error) {
	switch {
	case resp.Status >= 200 && resp.Status < 300:
		return resp, nil
	case resp.Status == http.StatusNotFound && c.isOptional(req):
		return &Response{Status: resp.Status, Empty: true}, nil
	default:
		return nil, &APIError{Status: resp.Status, Body: resp.Body}
	}
}

func (c *Client) isOptional(req Request) bool {
	if req.Optional {
		return true
	}
	if c.optional == nil {
		return false
	}
	if c.optional.Contains(req.Path) {
		return true
	}
	for _, p := range c.optional.ToSlice() {
		if strings.HasSuffix(p, "/") && strings.HasPrefix(req.Path, p) {
			return true
		}
	}
	return false
}

func (c *Client) send(ctx context.Context, req Request, payload []byte) (*Response, error) {
	endpoint := c.baseURL + req.Path
	if len(req.Query) > 0 {
		endpoint += "?" + req.Query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	hreq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, body)
	if err != nil {
		return nil, err
	}
	hreq.Header.Set("Accept", "application/json")
	if payload != nil {
		hreq.Header.Set("Content-Type", "application/json")
	}
	if req.Credentials.Present() {
		hreq.Header.Set("Authorization", "Bearer "+req.Credentials.AccessToken)
	}

	hresp, err := c.http.Do(hreq)
	if err != nil {
		return nil, &TransportError{Method: req.Method, Path: req.Path, Err: err}
	}
	defer hresp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(hresp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Method: req.Method, Path: req.Path, Err: err}
	}

	return &Response{Status: hresp.StatusCode, Body: b}, nil
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	return json.Marshal(body)
}

var ErrNoRefreshToken = errors.New("no refresh token")

const refreshPath = "/api/auth/refresh"

// tokenRefresher calls the upstream refresh endpoint without credentials so a
// refresh can never recurse into another refresh.
type tokenRefresher struct {
	client *Client
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
	Token       string `json:"token"`
	Data        struct {
		AccessToken string `json:"accessToken"`
		Token       string `json:"token"`
	} `json:"data"`
}

func (r *tokenRefresher) Refresh(ctx context.Context, refreshToken string) (string, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return "", ErrNoRefreshToken
	}

	payload, err := encodeBody(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return "", err
	}

	resp, err := r.client.send(ctx, Request{Method: http.MethodPost, Path: refreshPath}, payload)
	if err != nil {
		return "", err
	}
	if resp.Status < 200 || resp.Status >= 300 {
		return "", &APIError{Status: resp.Status, Body: resp.Body}
	}

	var out refreshResponse
	if err := resp.Decode(&out); err != nil {
		return "", err
	}
	for _, tok := range []string{out.AccessToken, out.Token, out.Data.AccessToken, out.Data.Token} {
		if tok = strings.TrimSpace(tok); tok != "" {
			return tok, nil
		}
	}
	return "", errors.New("refresh response carried no access token")
}
