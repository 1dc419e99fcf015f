package api

import (
	"strings"

	"github.com/ohlcv-etl/ohlcv/internal/model"
)

// ToRawSeries converts the response into the untyped series handed to the transform stage.
// The requested symbol is used rather than the echo in Meta Data.
func (r *DailySeriesResponse) ToRawSeries(symbol string) model.RawSeries {
	series := model.RawSeries{
		Symbol: strings.ToUpper(symbol),
		Bars:   make(map[string]model.RawBar, len(r.TimeSeries)),
	}
	for date, bar := range r.TimeSeries {
		series.Bars[strings.TrimSpace(date)] = model.RawBar{
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: bar.Volume,
		}
	}
	return series
}

// classify turns an error payload into a typed error. It returns nil for a data response.
func (r *DailySeriesResponse) classify(symbol string) error {
	switch {
	case r.ErrorMessage != "":
		return &SymbolError{Symbol: symbol, Message: r.ErrorMessage}
	case r.Note != "":
		return &RateLimitError{Symbol: symbol, Message: r.Note}
	case r.Information != "":
		if isRateLimitNotice(r.Information) {
			return &RateLimitError{Symbol: symbol, Message: r.Information}
		}
		return &SymbolError{Symbol: symbol, Message: r.Information}
	case r.TimeSeries == nil:
		return &SymbolError{Symbol: symbol, Message: "response has no daily time series"}
	}
	return nil
}

var rateLimitPhrases = []string{
	"rate limit",
	"call frequency",
	"calls per minute",
	"requests per day",
}

func isRateLimitNotice(msg string) bool {
	msg = strings.ToLower(msg)
	for _, p := range rateLimitPhrases {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
