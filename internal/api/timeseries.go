package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ohlcv-etl/ohlcv/internal/model"
)

// OutputSize selects how much history the provider returns.
type OutputSize string

const (
	// OutputFull returns the complete daily history.
	OutputFull OutputSize = "full"
	// OutputCompact returns the latest 100 trading days.
	OutputCompact OutputSize = "compact"
)

// ParseOutputSize validates an output size name.
func ParseOutputSize(s string) (OutputSize, error) {
	switch OutputSize(strings.ToLower(s)) {
	case OutputFull:
		return OutputFull, nil
	case OutputCompact:
		return OutputCompact, nil
	default:
		return "", fmt.Errorf("invalid output size %q: must be full or compact", s)
	}
}

// GetDailySeries fetches the daily OHLCV series for one symbol.
func (c *Client) GetDailySeries(ctx context.Context, symbol string, size OutputSize) (model.RawSeries, error) {
	if size == "" {
		size = OutputFull
	}

	query := url.Values{}
	query.Set("function", "TIME_SERIES_DAILY")
	query.Set("symbol", symbol)
	query.Set("outputsize", string(size))

	var resp DailySeriesResponse
	if err := c.get(ctx, query, &resp); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			return model.RawSeries{}, &RateLimitError{Symbol: symbol, Message: apiErr.Message}
		}
		return model.RawSeries{}, fmt.Errorf("get daily series %s: %w", symbol, err)
	}

	if err := resp.classify(symbol); err != nil {
		return model.RawSeries{}, err
	}

	series := resp.ToRawSeries(symbol)
	c.logger.Debug("fetched daily series", "symbol", series.Symbol, "bars", series.Len())
	return series, nil
}
