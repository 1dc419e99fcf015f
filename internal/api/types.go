package api

// DailySeriesResponse from GET /query?function=TIME_SERIES_DAILY, after key cleaning.
// Exactly one of TimeSeries, ErrorMessage, Note or Information is normally set.
type DailySeriesResponse struct {
	MetaData   map[string]string   `json:"Meta Data"`
	TimeSeries map[string]DailyBar `json:"Time Series (Daily)"`

	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
}

// DailyBar is one trading day. Values arrive as decimal strings.
type DailyBar struct {
	Open   string `json:"open"`
	High   string `json:"high"`
	Low    string `json:"low"`
	Close  string `json:"close"`
	Volume string `json:"volume"`
}
