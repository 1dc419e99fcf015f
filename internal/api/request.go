package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// APIError represents a non-2xx HTTP response from Alpha Vantage.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("alpha vantage api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error should trigger a retry.
// 429 is not retried: a rate limit ends the run.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500
}

// RateLimitError signals that the provider refused further calls.
type RateLimitError struct {
	Symbol  string
	Message string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("alpha vantage rate limit hit at %s: %s", e.Symbol, e.Message)
}

// SymbolError signals that the provider returned an error payload for one symbol.
type SymbolError struct {
	Symbol  string
	Message string
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("alpha vantage error for %s: %s", e.Symbol, e.Message)
}

// doRequest performs a GET against the query endpoint.
func (c *Client) doRequest(ctx context.Context, query url.Values) ([]byte, error) {
	params := url.Values{}
	for k, v := range query {
		params[k] = v
	}
	if c.apiKey != "" {
		params.Set("apikey", c.apiKey)
	}

	fullURL := c.baseURL
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", redactKey(err, c.apiKey))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	return body, nil
}

// doWithRetry performs a request with jittered exponential backoff on 5xx responses.
func (c *Client) doWithRetry(ctx context.Context, query url.Values) ([]byte, error) {
	b := backoff.WithContext(c.retry.backOff(), ctx)

	attempts := 0
	operation := func() ([]byte, error) {
		attempts++
		body, err := c.doRequest(ctx, query)
		if err == nil {
			return body, nil
		}

		// Check if error is retryable
		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.IsRetryable() {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Debug("retrying request",
			"attempt", attempts,
			"backoff", wait,
			"symbol", query.Get("symbol"),
			"error", err,
		)
	}

	body, err := backoff.RetryNotifyWithData(operation, b, notify)
	if err != nil {
		var apiErr *APIError
		if attempts > c.retry.MaxRetries && errors.As(err, &apiErr) && apiErr.IsRetryable() {
			return nil, fmt.Errorf("max retries exceeded: %w", err)
		}
		return nil, err
	}
	return body, nil
}

// get performs a GET request with retries and decodes the cleaned JSON body.
func (c *Client) get(ctx context.Context, query url.Values, result any) error {
	body, err := c.doWithRetry(ctx, query)
	if err != nil {
		return err
	}

	// API uses odd format which includes numbers in JSON keys
	if err := json.Unmarshal(cleanResponseBody(body), result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}

var numberedKey = regexp.MustCompile(`"[0-9]+\. `)

// cleanResponseBody rewrites keys like "1. open" to "open".
func cleanResponseBody(body []byte) []byte {
	return numberedKey.ReplaceAll(body, []byte(`"`))
}

// redactKey strips the API key from url.Error messages so it never reaches the log.
func redactKey(err error, key string) error {
	var urlErr *url.Error
	if key == "" || !errors.As(err, &urlErr) {
		return err
	}
	redacted := *urlErr
	if u, perr := url.Parse(urlErr.URL); perr == nil {
		q := u.Query()
		q.Set("apikey", "REDACTED")
		u.RawQuery = q.Encode()
		redacted.URL = u.String()
	}
	return &redacted
}
