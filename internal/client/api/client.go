package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/botadmin/internal/logging"
)

const (
	RequestIDHeader = "X-Request-ID"

	DefaultRefreshPath    = "/auth/refresh"
	DefaultRefreshTimeout = 10 * time.Second
	DefaultRequestTimeout = 30 * time.Second
)

// Doer sends a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// SessionClearer is told to drop the local session when it can no longer be
// refreshed.
type SessionClearer interface {
	Clear(ctx context.Context) error
}

type Config struct {
	// BaseURL is the API root, e.g. "https://host/api".
	BaseURL string
	// HTTPClient defaults to an *http.Client with a cookie jar and
	// DefaultRequestTimeout.
	HTTPClient Doer
	// Session is cleared on terminal expiry. Optional.
	Session SessionClearer
	Logger  logging.Logger

	RefreshPath    string
	RefreshTimeout time.Duration
}

// Client is the session-aware API client.
type Client struct {
	baseURL        *url.URL
	http           Doer
	session        SessionClearer
	log            logging.Logger
	refreshPath    string
	refreshTimeout time.Duration

	refresh singleflight.Group

	// onRefreshWait runs after a caller attached to the refresh flight.
	onRefreshWait func()
}

func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	c := &Client{
		baseURL:        base,
		http:           cfg.HTTPClient,
		session:        cfg.Session,
		log:            cfg.Logger,
		refreshPath:    cfg.RefreshPath,
		refreshTimeout: cfg.RefreshTimeout,
	}
	if c.http == nil {
		c.http, err = NewHTTPClient(DefaultRequestTimeout)
		if err != nil {
			return nil, err
		}
	}
	if c.log == nil {
		c.log = logging.NewNopLogger()
	}
	if c.refreshPath == "" {
		c.refreshPath = DefaultRefreshPath
	}
	if c.refreshTimeout <= 0 {
		c.refreshTimeout = DefaultRefreshTimeout
	}
	return c, nil
}

// NewHTTPClient returns an *http.Client that keeps session cookies between
// calls.
func NewHTTPClient(timeout time.Duration) (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &http.Client{Jar: jar, Timeout: timeout}, nil
}

func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Params: params}, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, newRequest(http.MethodPost, path, body, opts), out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, newRequest(http.MethodPut, path, body, opts), out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, newRequest(http.MethodPatch, path, body, opts), out)
}

func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, newRequest(http.MethodDelete, path, nil, opts), out)
}

func newRequest(method, path string, body any, opts []RequestOption) *Request {
	r := &Request{Method: method, Path: path, Body: body}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Do issues r and decodes a successful JSON response into out. A nil out or
// an empty response body leaves out untouched.
func (c *Client) Do(ctx context.Context, r *Request, out any) error {
	p, err := c.prepare(r)
	if err != nil {
		return err
	}

	requestID := uuid.NewString()
	log := c.log.With("request_id", requestID, "method", p.method, "path", p.path)

	body, err := c.send(ctx, p, requestID, log)
	if err == nil {
		return decode(body, out)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		return err
	}

	// First 401 for this call: the request is now marked retried.
	log.Info(ctx, "session expired, waiting for refresh")
	if err := c.awaitRefresh(ctx, log); err != nil {
		return err
	}

	body, err = c.send(ctx, p, requestID, log)
	if err == nil {
		return decode(body, out)
	}
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		log.Warn(ctx, "replay rejected after refresh, logging out")
		c.logout(ctx, log)
		return fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}
	return err
}

// send performs one attempt and returns the response body of a 2xx reply.
func (c *Client) send(ctx context.Context, p *preparedRequest, requestID string, log logging.Logger) ([]byte, error) {
	req, err := p.build(ctx, requestID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn(ctx, "no response from server", "error", err)
		return nil, fmt.Errorf("%w: %s %s: %w", ErrNetworkUnreachable, p.method, p.path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s %s: %w", ErrNetworkUnreachable, p.method, p.path, err)
	}
	log.Debug(ctx, "response received", "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(p.method, p.path, resp.StatusCode, body)
	}
	return body, nil
}

func decode(body []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw = body
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return nil
}
