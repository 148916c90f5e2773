// Package transport is the HTTP client used to reach the remote row store.
// Requests are paced by a token bucket and bounded by the caller's context.
package transport

import (
	"context"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/agentstation/docsync/pkg/constants"
	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/logging"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// ContentTypeText is sent on writes. Script-hosted endpoints accept it
// without a CORS preflight.
const ContentTypeText = "text/plain;charset=utf-8"

// Client performs paced HTTP requests.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRateLimit paces requests to rps per second with the given burst.
// A non-positive rps disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a new transport client.
func New(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: DefaultHTTPTimeout},
		limiter:   rate.NewLimiter(rate.Limit(constants.DefaultRequestsPerSecond), constants.BurstSize),
		userAgent: "docsync",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do waits for a request slot and performs req.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	logging.FromContext(ctx).Debug().
		Str("method", req.Method).
		Str("url", req.URL.Redacted()).
		Msg("Remote request")

	return c.http.Do(req)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapValidation("url", err)
	}
	return c.Do(ctx, req)
}

// Post performs a POST request with the given content type.
func (c *Client) Post(ctx context.Context, url, contentType string, body string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return nil, errors.WrapValidation("url", err)
	}
	req.Header.Set("Content-Type", contentType)
	return c.Do(ctx, req)
}

// drain discards the rest of a body so the connection can be reused.
func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 1<<20))
}
