package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Client fetches daily time series from Alpha Vantage.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
	retry      RetryPolicy
}

// RetryPolicy controls how 5xx responses are retried.
type RetryPolicy struct {
	MaxRetries      int           // Retries after the first attempt
	InitialInterval time.Duration // First wait
	MaxInterval     time.Duration // Cap on a single wait
	Multiplier      float64       // Growth factor between waits
}

// DefaultRetryPolicy returns two retries starting at one second.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      2,
		InitialInterval: time.Second,
		MaxInterval:     backoff.DefaultMaxInterval,
		Multiplier:      backoff.DefaultMultiplier,
	}
}

// backOff builds a jittered exponential schedule bounded by MaxRetries.
// The overall elapsed time is not capped; the request timeout bounds each attempt.
func (p RetryPolicy) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	if p.Multiplier > 0 {
		b.Multiplier = p.Multiplier
	}
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithMaxRetries(b, uint64(max(p.MaxRetries, 0)))
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a client for the query endpoint at baseURL.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
		retry:      DefaultRetryPolicy(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry count and first wait, keeping the other policy knobs.
func WithRetries(max int, initial time.Duration) ClientOption {
	return func(c *Client) {
		c.retry.MaxRetries = max
		c.retry.InitialInterval = initial
	}
}

// WithRetryPolicy replaces the whole retry policy.
func WithRetryPolicy(p RetryPolicy) ClientOption {
	return func(c *Client) {
		c.retry = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}
