package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sakashimaa/storefront/pkg/metrics"
	"github.com/sakashimaa/storefront/pkg/mylogger"
	"github.com/sakashimaa/storefront/pkg/utils"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const refreshPath = "/auth/refresh"

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.http = httpClient
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithSessionExpiredHook registers the callback run after a failed refresh wiped the session.
func WithSessionExpiredHook(hook func(ctx context.Context)) Option {
	return func(c *Client) {
		c.onSessionExpired = hook
	}
}

// Request describes one backend call. Body is JSON encoded when non-nil.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
	Header http.Header
	// SkipRefresh hands a 401 straight to the caller, e.g. for bad login credentials.
	SkipRefresh bool
}

type response struct {
	status int
	body   []byte
}

// Client dispatches requests to the storefront API. It attaches the stored bearer token and,
// on a 401, refreshes the session once and retries the request once.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
	logger  *zap.Logger
	metrics *metrics.Metrics
	cb      *gobreaker.CircuitBreaker

	refreshTimeout time.Duration

	refreshGroup singleflight.Group

	hookMu           sync.RWMutex
	onSessionExpired func(ctx context.Context)
}

func New(cfg Config, tokens TokenStore, logger *zap.Logger, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tokens:         tokens,
		logger:         logger,
		refreshTimeout: timeout,
	}
	c.cb = utils.NewBreaker("StorefrontAPI", logger, isBreakerSuccess)

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SetSessionExpiredHook replaces the hook after construction; stores are built after the client.
func (c *Client) SetSessionExpiredHook(hook func(ctx context.Context)) {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()

	c.onSessionExpired = hook
}

func (c *Client) Tokens() TokenStore {
	return c.tokens
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: body}, out)
}

func (c *Client) Delete(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, out)
}

// Do sends req and decodes a 2xx body into out (when out is non-nil).
func (c *Client) Do(ctx context.Context, req Request, out interface{}) error {
	var payload []byte
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("error encoding request body: %w", err)
		}
		payload = data
	}

	accessToken, err := c.tokens.Get(ctx, KeyAccessToken)
	if err != nil {
		return fmt.Errorf("error reading access token: %w", err)
	}

	res, err := c.send(ctx, req, payload, accessToken)
	if err != nil {
		return err
	}

	if res.status == http.StatusUnauthorized && !req.SkipRefresh && req.Path != refreshPath {
		mylogger.Info(
			ctx,
			c.logger,
			"access token rejected, refreshing session",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
		)

		if err := c.refresh(ctx, accessToken); err != nil {
			return err
		}

		accessToken, err = c.tokens.Get(ctx, KeyAccessToken)
		if err != nil {
			return fmt.Errorf("error reading access token: %w", err)
		}

		res, err = c.send(ctx, req, payload, accessToken)
		if err != nil {
			return err
		}

		if res.status == http.StatusUnauthorized {
			apiErr := newAPIError(res.status, res.body)
			c.expireSession(ctx, apiErr)
			return apiErr
		}
	}

	if res.status < 200 || res.status >= 300 {
		apiErr := newAPIError(res.status, res.body)

		mylogger.Warn(
			ctx,
			c.logger,
			"api request failed",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Int("status", res.status),
			zap.String("message", apiErr.Message),
		)

		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(res.body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(res.body, out); err != nil {
		return fmt.Errorf("error decoding %s %s response: %w", req.Method, req.Path, err)
	}

	return nil
}

// refresh rotates the session once. Concurrent callers that saw the same rejected token share
// one refresh call; a caller whose token was already rotated retries without refreshing again.
// The shared call outlives any single caller's context, and only a backend rejection of the
// refresh token ends the session.
func (c *Client) refresh(ctx context.Context, rejectedToken string) error {
	current, err := c.tokens.Get(ctx, KeyAccessToken)
	if err != nil {
		return fmt.Errorf("error reading access token: %w", err)
	}
	if current != "" && current != rejectedToken {
		return nil
	}

	ch := c.refreshGroup.DoChan("refresh", func() (interface{}, error) {
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
		defer cancel()

		err := c.doRefresh(refreshCtx)
		c.metrics.Refresh(err == nil)
		if err != nil && isRefreshRejected(err) {
			c.expireSession(refreshCtx, err)
		}
		return nil, err
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err == nil {
			return nil
		}
		if isRefreshRejected(res.Err) {
			return fmt.Errorf("%w: %w", ErrSessionExpired, res.Err)
		}
		return fmt.Errorf("error refreshing session: %w", res.Err)
	}
}

// isRefreshRejected reports whether the backend refused the refresh token itself, as opposed
// to the refresh call failing in transit.
func isRefreshRejected(err error) bool {
	if errors.Is(err, ErrNoRefreshToken) {
		return true
	}

	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (c *Client) doRefresh(ctx context.Context) error {
	refreshToken, err := c.tokens.Get(ctx, KeyRefreshToken)
	if err != nil {
		return fmt.Errorf("error reading refresh token: %w", err)
	}
	if refreshToken == "" {
		return ErrNoRefreshToken
	}

	payload, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return err
	}

	res, err := c.send(ctx, Request{Method: http.MethodPost, Path: refreshPath}, payload, "")
	if err != nil {
		return err
	}

	if res.status < 200 || res.status >= 300 {
		return newAPIError(res.status, res.body)
	}

	var tokens refreshResponse
	if err := json.Unmarshal(res.body, &tokens); err != nil {
		return fmt.Errorf("error decoding refresh response: %w", err)
	}
	if tokens.AccessToken == "" {
		return errors.New("refresh response carries no access token")
	}

	if err := c.tokens.Set(ctx, KeyAccessToken, tokens.AccessToken); err != nil {
		return err
	}
	if tokens.RefreshToken != "" {
		if err := c.tokens.Set(ctx, KeyRefreshToken, tokens.RefreshToken); err != nil {
			return err
		}
	}

	mylogger.Info(ctx, c.logger, "session refreshed")
	return nil
}

func (c *Client) expireSession(ctx context.Context, cause error) {
	mylogger.Warn(
		ctx,
		c.logger,
		"session refresh failed, clearing credentials",
		zap.Error(cause),
	)

	if err := c.tokens.Delete(ctx, KeyAccessToken, KeyRefreshToken); err != nil {
		mylogger.Error(ctx, c.logger, "Failed to clear credentials", zap.Error(err))
	}

	c.hookMu.RLock()
	hook := c.onSessionExpired
	c.hookMu.RUnlock()

	if hook != nil {
		hook(ctx)
	}
}

// SessionID returns the anonymous session identifier, creating it on first use.
func (c *Client) SessionID(ctx context.Context) (string, error) {
	id, err := c.tokens.Get(ctx, KeySessionID)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	id = uuid.NewString()
	if err := c.tokens.Set(ctx, KeySessionID, id); err != nil {
		return "", err
	}

	return id, nil
}

func (c *Client) send(ctx context.Context, req Request, payload []byte, accessToken string) (*response, error) {
	sessionID, err := c.SessionID(ctx)
	if err != nil {
		return nil, fmt.Errorf("error reading session id: %w", err)
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	res, err := utils.ExecuteWithBreaker[*response](c.cb, func() (*response, error) {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}

		httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
		if err != nil {
			return nil, err
		}

		for key, values := range req.Header {
			for _, v := range values {
				httpReq.Header.Add(key, v)
			}
		}
		httpReq.Header.Set("Accept", "application/json")
		httpReq.Header.Set("X-Session-Id", sessionID)
		if payload != nil {
			httpReq.Header.Set("Content-Type", "application/json")
		}
		if accessToken != "" {
			httpReq.Header.Set("Authorization", "Bearer "+accessToken)
		}

		started := time.Now()
		httpRes, err := c.http.Do(httpReq)
		if err != nil {
			c.metrics.ObserveRequest(req.Method, 0, time.Since(started))
			return nil, err
		}
		defer httpRes.Body.Close()

		c.metrics.ObserveRequest(req.Method, httpRes.StatusCode, time.Since(started))

		data, err := io.ReadAll(httpRes.Body)
		if err != nil {
			return nil, fmt.Errorf("error reading response body: %w", err)
		}

		if httpRes.StatusCode >= http.StatusInternalServerError {
			return nil, newAPIError(httpRes.StatusCode, data)
		}

		return &response{status: httpRes.StatusCode, body: data}, nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			mylogger.Warn(
				ctx,
				c.logger,
				"Circuit breaker is open",
				zap.String("path", req.Path),
			)

			return nil, ErrServiceUnavailable
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) {
			mylogger.Warn(
				ctx,
				c.logger,
				"api request failed",
				zap.String("method", req.Method),
				zap.String("path", req.Path),
				zap.Int("status", apiErr.StatusCode),
			)

			return nil, apiErr
		}

		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}

	return res, nil
}

// isBreakerSuccess counts only transport failures and 5xx answers against the breaker.
func isBreakerSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode < http.StatusInternalServerError
	}

	return false
}
