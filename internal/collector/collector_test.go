package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	finance "github.com/piquette/finance-go"

	"StockScreener/internal/model"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

const chartJSON = `{"chart":{"result":[{
  "meta":{"currency":"USD","exchangeTimezoneName":"America/New_York"},
  "timestamp":[1704205800,1704292200,1704378600],
  "indicators":{"quote":[{
    "open":[100,101,null],
    "high":[102,103,null],
    "low":[99,100,null],
    "close":[101,102.5,null],
    "volume":[1000,2000,null]
  }]}
}],"error":null}}`

const summaryJSON = `{"quoteSummary":{"result":[{
  "summaryDetail":{"trailingPE":{"raw":24.5,"fmt":"24.50"}},
  "defaultKeyStatistics":{"trailingEps":{"raw":6.1,"fmt":"6.10"}},
  "financialData":{"revenueGrowth":{"raw":0.081,"fmt":"8.10%"},"debtToEquity":{}}
}],"error":null}}`

func newYahooTestServer(t *testing.T, handler http.HandlerFunc) *YahooFetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	f := NewYahooFetcher("", 5*time.Second)
	f.ChartURL = srv.URL + "/chart"
	f.SummaryURL = srv.URL + "/summary"
	f.lookupEquity = func(string) (*finance.Equity, error) {
		return nil, errors.New("equity lookup disabled in tests")
	}
	return f
}

func TestYahooFetcher_PriceHistory(t *testing.T) {
	var gotPath, gotRange string
	f := newYahooTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRange = r.URL.Query().Get("range")
		fmt.Fprint(w, chartJSON)
	})

	series, err := f.FetchPriceHistory(context.Background(), "AAPL", "1y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/chart/AAPL" || gotRange != "1y" {
		t.Errorf("request path=%q range=%q", gotPath, gotRange)
	}
	if series.Len() != 2 {
		t.Fatalf("expected 2 bars (null close skipped), got %d", series.Len())
	}
	if series.Currency != "USD" {
		t.Errorf("currency: got %q", series.Currency)
	}
	if series.Bars[1].Close != 102.5 {
		t.Errorf("close: got %v", series.Bars[1].Close)
	}
	if got := model.DateKey(series.Bars[0].Time); got != "2024-01-02" {
		t.Errorf("first date: got %s", got)
	}
	if err := series.Validate(); err != nil {
		t.Errorf("series should validate: %v", err)
	}
}

func TestYahooFetcher_SymbolMap(t *testing.T) {
	var gotPath string
	f := newYahooTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		fmt.Fprint(w, chartJSON)
	})
	if _, err := f.FetchPriceHistory(context.Background(), "SPX500", "1mo"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/chart/%5EGSPC" {
		t.Errorf("expected mapped symbol, got path %q", gotPath)
	}
}

func TestYahooFetcher_NoData(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"not found", http.StatusNotFound, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`},
		{"empty result", http.StatusOK, `{"chart":{"result":[],"error":null}}`},
		{"all null closes", http.StatusOK, `{"chart":{"result":[{"meta":{},"timestamp":[1704205800],"indicators":{"quote":[{"close":[null]}]}}],"error":null}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newYahooTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})
			_, err := f.FetchPriceHistory(context.Background(), "ZZZZ", "1y")
			if !errors.Is(err, ErrNoData) {
				t.Fatalf("expected ErrNoData, got %v", err)
			}
			if err.Error() != "No data found for ZZZZ" {
				t.Errorf("message: got %q", err.Error())
			}
		})
	}
}

func TestYahooFetcher_ServerError(t *testing.T) {
	f := newYahooTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "upstream down")
	})
	_, err := f.FetchPriceHistory(context.Background(), "AAPL", "1y")
	if err == nil || errors.Is(err, ErrNoData) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestYahooFetcher_InvalidPeriod(t *testing.T) {
	f := newYahooTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an invalid period")
	})
	_, err := f.FetchPriceHistory(context.Background(), "AAPL", "10y")
	if !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestYahooFetcher_Fundamentals(t *testing.T) {
	var gotModules string
	f := newYahooTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotModules = r.URL.Query().Get("modules")
		fmt.Fprint(w, summaryJSON)
	})
	snap, err := f.FetchFundamentals(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotModules != summaryModules {
		t.Errorf("modules: got %q", gotModules)
	}
	if v, ok := snap.PERatio.Get(); !ok || v != 24.5 {
		t.Errorf("pe: got %v ok=%v", v, ok)
	}
	if v, ok := snap.EPS.Get(); !ok || v != 6.1 {
		t.Errorf("eps: got %v ok=%v", v, ok)
	}
	if v, ok := snap.RevenueGrowthPct.Get(); !ok || v < 8.0999 || v > 8.1001 {
		t.Errorf("revenue growth: got %v ok=%v", v, ok)
	}
	if snap.DebtToEquity.Valid {
		t.Errorf("debt/equity should be unavailable, got %v", snap.DebtToEquity.Value)
	}
}

func TestYahooFetcher_FundamentalsFallback(t *testing.T) {
	f := newYahooTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	f.lookupEquity = func(symbol string) (*finance.Equity, error) {
		eq := &finance.Equity{}
		eq.TrailingPE = 12
		eq.EpsTrailingTwelveMonths = 0
		return eq, nil
	}
	snap, err := f.FetchFundamentals(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, ok := snap.PERatio.Get(); !ok || v != 12 {
		t.Errorf("pe: got %v ok=%v", v, ok)
	}
	if snap.EPS.Valid || snap.RevenueGrowthPct.Valid || snap.DebtToEquity.Valid {
		t.Errorf("fallback should only fill P/E here, got %+v", snap)
	}
}

func TestYahooFetcher_FundamentalsBothFail(t *testing.T) {
	f := newYahooTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	if _, err := f.FetchFundamentals(context.Background(), "AAPL"); err == nil {
		t.Fatal("expected error when summary and equity both fail")
	}
}

func TestYahooFetcher_FundamentalsCancelledSkipsFallback(t *testing.T) {
	f := newYahooTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, summaryJSON)
	})
	var called atomic.Bool
	f.lookupEquity = func(string) (*finance.Equity, error) {
		called.Store(true)
		return &finance.Equity{}, nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.FetchFundamentals(ctx, "AAPL")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if called.Load() {
		t.Error("equity fallback must not run after the context is cancelled")
	}
}

func TestYahooFetcher_FundamentalsFallbackHonorsDeadline(t *testing.T) {
	f := newYahooTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	f.lookupEquity = func(string) (*finance.Equity, error) {
		<-release
		return &finance.Equity{}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := f.FetchFundamentals(ctx, "AAPL")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("fallback outlived the deadline: %v", elapsed)
	}
}

func TestYahooFetcher_ZeroRevenueGrowthIsPresent(t *testing.T) {
	f := newYahooTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteSummary":{"result":[{"financialData":{"revenueGrowth":{"raw":0,"fmt":"0.00%"}}}],"error":null}}`)
	})
	snap, err := f.FetchFundamentals(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A reported 0% growth is shown as 0.00, not N/A.
	if v, ok := snap.RevenueGrowthPct.Get(); !ok || v != 0 {
		t.Errorf("revenue growth: got %v ok=%v, want present 0", v, ok)
	}
	if snap.PERatio.Valid {
		t.Errorf("missing P/E should be unavailable, got %v", snap.PERatio.Value)
	}
}

func TestRESTFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("authorization header: got %q", got)
		}
		switch r.URL.Path {
		case "/api/v1/bars/daily":
			if r.URL.Query().Get("symbol") == "NONE" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			// out of order with a duplicate day; the later bar wins
			fmt.Fprint(w, `[
			  {"timestamp":1704292200,"open":1,"high":2,"low":0.5,"close":1.5,"volume":10},
			  {"timestamp":1704205800,"open":1,"high":2,"low":0.5,"close":1.2,"volume":10},
			  {"timestamp":1704297600,"open":1,"high":2,"low":0.5,"close":1.7,"volume":10}
			]`)
		case "/api/v1/fundamentals":
			fmt.Fprint(w, `{"pe_ratio":14.2,"eps":null,"revenue_growth_pct":0,"debt_to_equity":1.1}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL, "secret", "", 5*time.Second)
	ctx := context.Background()

	series, err := f.FetchPriceHistory(ctx, "AAPL", "1y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if series.Len() != 2 {
		t.Fatalf("expected 2 bars after dedupe, got %d", series.Len())
	}
	if series.Bars[0].Close != 1.2 || series.Bars[1].Close != 1.7 {
		t.Errorf("unexpected closes: %v", series.Closes())
	}

	if _, err := f.FetchPriceHistory(ctx, "NONE", "1y"); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}

	snap, err := f.FetchFundamentals(ctx, "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, ok := snap.PERatio.Get(); !ok || v != 14.2 {
		t.Errorf("pe: got %v ok=%v", v, ok)
	}
	if snap.EPS.Valid {
		t.Error("eps should be unavailable")
	}
	if v, ok := snap.RevenueGrowthPct.Get(); !ok || v != 0 {
		t.Errorf("zero revenue growth should be present, got %v ok=%v", v, ok)
	}
}

func TestMockFetcher(t *testing.T) {
	ctx := context.Background()

	t.Run("generated", func(t *testing.T) {
		m := &MockFetcher{Price: 150, Now: func() time.Time { return day(31) }}
		series, err := m.FetchPriceHistory(ctx, "TEST", "1y")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if series.Len() != 252 {
			t.Errorf("expected 252 bars, got %d", series.Len())
		}
		if err := series.Validate(); err != nil {
			t.Errorf("generated series should validate: %v", err)
		}
		last, _ := series.Latest()
		if model.DateKey(last.Time) != "2024-01-31" {
			t.Errorf("last bar date: got %s", model.DateKey(last.Time))
		}
	})

	t.Run("empty bars", func(t *testing.T) {
		m := &MockFetcher{Bars: []model.OHLCV{}}
		if _, err := m.FetchPriceHistory(ctx, "EMPTY", "1y"); !errors.Is(err, ErrNoData) {
			t.Errorf("expected ErrNoData, got %v", err)
		}
	})

	t.Run("error", func(t *testing.T) {
		boom := errors.New("boom")
		m := &MockFetcher{Err: boom}
		if _, err := m.FetchFundamentals(ctx, "X"); !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
	})
}

func TestPeriods(t *testing.T) {
	for _, p := range []string{"1mo", "3mo", "6mo", "1y", "2y", "5y"} {
		if err := ValidatePeriod(p); err != nil {
			t.Errorf("%s: unexpected error %v", p, err)
		}
	}
	for _, p := range []string{"", "1d", "ytd", "max", "1Y"} {
		if err := ValidatePeriod(p); !errors.Is(err, ErrInvalidPeriod) {
			t.Errorf("%q: expected ErrInvalidPeriod, got %v", p, err)
		}
	}
}

type countingFetcher struct {
	MockFetcher
	priceCalls, fundCalls atomic.Int32
}

func (c *countingFetcher) FetchPriceHistory(ctx context.Context, ticker, period string) (*model.PriceSeries, error) {
	c.priceCalls.Add(1)
	return c.MockFetcher.FetchPriceHistory(ctx, ticker, period)
}

func (c *countingFetcher) FetchFundamentals(ctx context.Context, ticker string) (*model.FundamentalSnapshot, error) {
	c.fundCalls.Add(1)
	return c.MockFetcher.FetchFundamentals(ctx, ticker)
}

type observed struct{ kinds []string }

func (o *observed) ObserveCache(kind string, hit bool) {
	o.kinds = append(o.kinds, fmt.Sprintf("%s:%v", kind, hit))
}

func TestCachedFetcher_TTL(t *testing.T) {
	inner := &countingFetcher{MockFetcher: MockFetcher{
		Bars: []model.OHLCV{{Time: day(2), Close: 10}, {Time: day(3), Close: 11}},
	}}
	obs := &observed{}
	c := NewCachedFetcher(inner, time.Minute, obs)
	clock := day(10)
	c.now = func() time.Time { return clock }
	ctx := context.Background()

	first, err := c.FetchPriceHistory(ctx, "AAPL", "1y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first.Bars[0].Close = -1 // caller mutation must not leak into the cache

	second, _ := c.FetchPriceHistory(ctx, "AAPL", "1y")
	if inner.priceCalls.Load() != 1 {
		t.Errorf("expected 1 upstream call, got %d", inner.priceCalls.Load())
	}
	if second.Bars[0].Close != 10 {
		t.Errorf("cached series was mutated: %v", second.Closes())
	}

	if _, err := c.FetchPriceHistory(ctx, "AAPL", "6mo"); err != nil {
		t.Fatal(err)
	}
	if inner.priceCalls.Load() != 2 {
		t.Errorf("different period should miss, calls=%d", inner.priceCalls.Load())
	}

	clock = clock.Add(2 * time.Minute)
	if _, err := c.FetchPriceHistory(ctx, "AAPL", "1y"); err != nil {
		t.Fatal(err)
	}
	if inner.priceCalls.Load() != 3 {
		t.Errorf("expired entry should refetch, calls=%d", inner.priceCalls.Load())
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 3 {
		t.Errorf("stats: hits=%d misses=%d", hits, misses)
	}
	want := "prices:false,prices:true,prices:false,prices:false"
	if got := strings.Join(obs.kinds, ","); got != want {
		t.Errorf("observer: got %s, want %s", got, want)
	}
}

func TestCachedFetcher_Fundamentals(t *testing.T) {
	inner := &countingFetcher{}
	c := NewCachedFetcher(inner, time.Minute, nil)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := c.FetchFundamentals(ctx, "AAPL"); err != nil {
			t.Fatal(err)
		}
	}
	if inner.fundCalls.Load() != 1 {
		t.Errorf("expected 1 upstream call, got %d", inner.fundCalls.Load())
	}
}

func TestCachedFetcher_ErrorsNotCached(t *testing.T) {
	inner := &countingFetcher{MockFetcher: MockFetcher{Bars: []model.OHLCV{}}}
	c := NewCachedFetcher(inner, time.Minute, nil)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := c.FetchPriceHistory(ctx, "NONE", "1y"); !errors.Is(err, ErrNoData) {
			t.Fatalf("expected ErrNoData, got %v", err)
		}
	}
	if inner.priceCalls.Load() != 2 {
		t.Errorf("errors must not be cached, calls=%d", inner.priceCalls.Load())
	}
}

func TestCachedFetcher_Sweep(t *testing.T) {
	inner := &countingFetcher{}
	c := NewCachedFetcher(inner, time.Minute, nil)
	start := day(10)
	c.now = func() time.Time { return start }
	ctx := context.Background()

	if _, err := c.FetchPriceHistory(ctx, "AAPL", "1mo"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.FetchFundamentals(ctx, "AAPL"); err != nil {
		t.Fatal(err)
	}
	if n := c.Sweep(start.Add(30 * time.Second)); n != 0 {
		t.Errorf("nothing should expire yet, removed %d", n)
	}
	if n := c.Sweep(start.Add(time.Minute)); n != 2 {
		t.Errorf("expected 2 evictions, got %d", n)
	}
	if c.Len() != 0 {
		t.Errorf("cache should be empty, len=%d", c.Len())
	}
}
