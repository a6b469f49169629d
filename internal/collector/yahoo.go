package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/equity"

	"StockScreener/internal/model"
)

const (
	defaultChartURL   = "https://query1.finance.yahoo.com/v8/finance/chart"
	defaultSummaryURL = "https://query2.finance.yahoo.com/v10/finance/quoteSummary"
	summaryModules    = "summaryDetail,defaultKeyStatistics,financialData"
)

// YahooFetcher implements Fetcher using the Yahoo Finance public API.
type YahooFetcher struct {
	Client     *resty.Client
	ChartURL   string
	SummaryURL string
	SymbolMap  map[string]string // maps internal symbol to Yahoo ticker

	// lookupEquity backs FetchFundamentals when quoteSummary is unreachable.
	lookupEquity func(symbol string) (*finance.Equity, error)
}

// NewYahooFetcher creates a new Yahoo Finance fetcher with optional proxy support.
func NewYahooFetcher(proxyURL string, timeout time.Duration) *YahooFetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "Mozilla/5.0").
		SetHeader("Accept", "application/json")
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return &YahooFetcher{
		Client:     client,
		ChartURL:   defaultChartURL,
		SummaryURL: defaultSummaryURL,
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"NIFTY":  "^NSEI",
		},
		lookupEquity: equity.Get,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency             string `json:"currency"`
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func at(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return 0
	}
	return *values[i]
}

// FetchPriceHistory fetches daily bars for the period (e.g. "1y").
func (f *YahooFetcher) FetchPriceHistory(ctx context.Context, ticker, period string) (*model.PriceSeries, error) {
	if err := ValidatePeriod(period); err != nil {
		return nil, err
	}
	endpoint := f.ChartURL + "/" + url.PathEscape(f.yahooSymbol(ticker))

	resp, err := f.Client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"interval": "1d", "range": period}).
		Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}

	var chart yahooChart
	if err := json.Unmarshal(resp.Body(), &chart); err != nil {
		if resp.IsError() {
			return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode(), resp.String())
		}
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		if resp.StatusCode() == http.StatusNotFound || strings.EqualFold(chart.Chart.Error.Code, "Not Found") {
			return nil, &NoDataError{Ticker: ticker}
		}
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode(), resp.String())
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, &NoDataError{Ticker: ticker}
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	loc := time.UTC
	if tz := result.Meta.ExchangeTimezoneName; tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}

	bars := make([]model.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue // skip null bars (holidays etc.)
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0).In(loc),
			Open:   at(quote.Open, i),
			High:   at(quote.High, i),
			Low:    at(quote.Low, i),
			Close:  *quote.Close[i],
			Volume: at(quote.Volume, i),
		})
	}

	series, err := finalizeBars(ticker, bars)
	if err != nil {
		return nil, err
	}
	series.Currency = result.Meta.Currency
	return series, nil
}

// rawValue is Yahoo's {"raw": 1.2, "fmt": "1.20"} envelope; missing data is {}.
type rawValue struct {
	Raw *float64 `json:"raw"`
}

type quoteSummary struct {
	QuoteSummary struct {
		Result []struct {
			SummaryDetail struct {
				TrailingPE rawValue `json:"trailingPE"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics struct {
				TrailingEps rawValue `json:"trailingEps"`
			} `json:"defaultKeyStatistics"`
			FinancialData struct {
				RevenueGrowth rawValue `json:"revenueGrowth"`
				DebtToEquity  rawValue `json:"debtToEquity"`
			} `json:"financialData"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteSummary"`
}

// FetchFundamentals reads P/E, EPS, revenue growth and debt/equity.
// When quoteSummary fails, P/E and EPS come from the equity quote and the
// remaining fields are unavailable. The fallback is skipped once ctx is done.
func (f *YahooFetcher) FetchFundamentals(ctx context.Context, ticker string) (*model.FundamentalSnapshot, error) {
	snap, err := f.fetchSummary(ctx, ticker)
	if err == nil {
		return snap, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("fundamentals: %w (%v)", ctxErr, err)
	}
	log.Printf("[WARN] yahoo quoteSummary for %s failed: %v, falling back to equity quote", ticker, err)

	eq, eqErr := f.equityWithContext(ctx, f.yahooSymbol(ticker))
	if eqErr != nil {
		return nil, fmt.Errorf("fundamentals: %w; equity fallback also failed: %w", err, eqErr)
	}
	if eq == nil {
		return &model.FundamentalSnapshot{}, nil
	}
	return snapshotFromEquity(eq), nil
}

type equityResult struct {
	eq  *finance.Equity
	err error
}

// equityWithContext bounds the finance-go lookup, which takes no context, by ctx.
// An abandoned lookup finishes in the background and its result is dropped.
func (f *YahooFetcher) equityWithContext(ctx context.Context, symbol string) (*finance.Equity, error) {
	done := make(chan equityResult, 1)
	go func() {
		eq, err := f.lookupEquity(symbol)
		done <- equityResult{eq: eq, err: err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.eq, r.err
	}
}

func (f *YahooFetcher) fetchSummary(ctx context.Context, ticker string) (*model.FundamentalSnapshot, error) {
	endpoint := f.SummaryURL + "/" + url.PathEscape(f.yahooSymbol(ticker))
	resp, err := f.Client.R().
		SetContext(ctx).
		SetQueryParam("modules", summaryModules).
		Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("yahoo summary fetch: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("yahoo summary: status %d", resp.StatusCode())
	}

	var summary quoteSummary
	if err := json.Unmarshal(resp.Body(), &summary); err != nil {
		return nil, fmt.Errorf("yahoo summary decode: %w", err)
	}
	if summary.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yahoo summary error: %s", summary.QuoteSummary.Error.Description)
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return &model.FundamentalSnapshot{}, nil
	}

	r := summary.QuoteSummary.Result[0]
	snap := &model.FundamentalSnapshot{
		PERatio:      model.FromPtr(r.SummaryDetail.TrailingPE.Raw),
		EPS:          model.FromPtr(r.DefaultKeyStatistics.TrailingEps.Raw),
		DebtToEquity: model.FromPtr(r.FinancialData.DebtToEquity.Raw),
	}
	if g := r.FinancialData.RevenueGrowth.Raw; g != nil {
		snap.RevenueGrowthPct = model.Some(*g * 100)
	}
	return snap, nil
}

// snapshotFromEquity maps the quote fields; the quote API reports absent values as zero.
func snapshotFromEquity(eq *finance.Equity) *model.FundamentalSnapshot {
	snap := &model.FundamentalSnapshot{}
	if eq.TrailingPE > 0 {
		snap.PERatio = model.Some(eq.TrailingPE)
	}
	if eq.EpsTrailingTwelveMonths != 0 {
		snap.EPS = model.Some(eq.EpsTrailingTwelveMonths)
	}
	return snap
}
