package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"StockScreener/internal/model"
)

// RESTFetcher implements Fetcher against a self-hosted market data service.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *resty.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration) *RESTFetcher {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &RESTFetcher{BaseURL: baseURL, APIKey: apiKey, Client: client}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the bars endpoint.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

func (f *RESTFetcher) FetchPriceHistory(ctx context.Context, ticker, period string) (*model.PriceSeries, error) {
	if err := ValidatePeriod(period); err != nil {
		return nil, err
	}
	resp, err := f.Client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"symbol": ticker, "period": period}).
		Get("/api/v1/bars/daily")
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, &NoDataError{Ticker: ticker}
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode(), resp.String())
	}

	var raw []restBar
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	bars := make([]model.OHLCV, len(raw))
	for i, rb := range raw {
		bars[i] = model.OHLCV{
			Time:   time.Unix(rb.Timestamp, 0).UTC(),
			Open:   rb.Open,
			High:   rb.High,
			Low:    rb.Low,
			Close:  rb.Close,
			Volume: rb.Volume,
		}
	}
	return finalizeBars(ticker, bars)
}

// FetchFundamentals expects {"pe_ratio": n|null, "eps": ..., "revenue_growth_pct": ..., "debt_to_equity": ...}.
func (f *RESTFetcher) FetchFundamentals(ctx context.Context, ticker string) (*model.FundamentalSnapshot, error) {
	resp, err := f.Client.R().
		SetContext(ctx).
		SetQueryParam("symbol", ticker).
		Get("/api/v1/fundamentals")
	if err != nil {
		return nil, fmt.Errorf("fetch fundamentals: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return &model.FundamentalSnapshot{}, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch fundamentals: status %d", resp.StatusCode())
	}

	var snap model.FundamentalSnapshot
	if err := json.Unmarshal(resp.Body(), &snap); err != nil {
		return nil, fmt.Errorf("decode fundamentals: %w", err)
	}
	return &snap, nil
}
