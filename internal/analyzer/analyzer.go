package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"StockScreener/internal/collector"
	"StockScreener/internal/engine"
	"StockScreener/internal/metrics"
	"StockScreener/internal/model"
)

var ErrInvalidTicker = errors.New("ticker symbol is required")

// Analysis is the complete result of one run. It is never modified after Analyze returns.
type Analysis struct {
	RunID          string                    `json:"run_id"`
	Ticker         string                    `json:"ticker"`
	Source         string                    `json:"source"`
	Fundamentals   model.FundamentalSnapshot `json:"fundamentals"`
	Indicators     model.IndicatorSet        `json:"indicators"`
	Recommendation model.Recommendation      `json:"recommendation"`
	Prices         *model.PriceSeries        `json:"prices"`
	GeneratedAt    time.Time                 `json:"generated_at"`
}

// Analyzer wires a data provider to the indicator engine.
type Analyzer struct {
	Fetcher collector.Fetcher
	Period  string
	Params  engine.Params
	Metrics *metrics.Metrics // optional
}

// New creates an Analyzer with the default one-year period and indicator parameters.
func New(f collector.Fetcher, m *metrics.Metrics) *Analyzer {
	return &Analyzer{
		Fetcher: f,
		Period:  collector.DefaultPeriod,
		Params:  engine.DefaultParams(),
		Metrics: m,
	}
}

// NormalizeTicker trims and upper-cases a user supplied symbol.
func NormalizeTicker(raw string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(raw))
	if t == "" {
		return "", ErrInvalidTicker
	}
	if strings.ContainsAny(t, " \t/?#") {
		return "", fmt.Errorf("%w: %q", ErrInvalidTicker, raw)
	}
	return t, nil
}

// Analyze fetches history and fundamentals for ticker and computes indicators and a recommendation.
// Any failure aborts the run.
func (a *Analyzer) Analyze(ctx context.Context, rawTicker string) (*Analysis, error) {
	start := time.Now()
	runID := uuid.NewString()

	res, err := a.analyze(ctx, runID, rawTicker)
	if err != nil {
		a.Metrics.ObserveAnalysis(outcome(err), "", time.Since(start))
		log.Printf("[WARN] run %s: analysis of %q failed: %v", runID, rawTicker, err)
		return nil, err
	}
	a.Metrics.ObserveAnalysis("ok", string(res.Recommendation.Action), time.Since(start))
	log.Printf("[INFO] run %s: %s %s (score %+d) in %s",
		runID, res.Ticker, res.Recommendation.Action, res.Recommendation.Score, time.Since(start).Round(time.Millisecond))
	return res, nil
}

func (a *Analyzer) analyze(ctx context.Context, runID, rawTicker string) (*Analysis, error) {
	ticker, err := NormalizeTicker(rawTicker)
	if err != nil {
		return nil, err
	}
	period := a.Period
	if period == "" {
		period = collector.DefaultPeriod
	}

	log.Printf("[INFO] run %s: fetching %s history for %s from %s", runID, period, ticker, a.Fetcher.Name())
	fetchStart := time.Now()
	series, err := a.Fetcher.FetchPriceHistory(ctx, ticker, period)
	a.Metrics.ObserveFetch("prices", time.Since(fetchStart))
	if err != nil {
		return nil, fmt.Errorf("fetch price history: %w", err)
	}
	if series.Len() == 0 {
		return nil, &collector.NoDataError{Ticker: ticker}
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("price history for %s: %w", ticker, err)
	}

	fetchStart = time.Now()
	fundamentals, err := a.Fetcher.FetchFundamentals(ctx, ticker)
	a.Metrics.ObserveFetch("fundamentals", time.Since(fetchStart))
	if err != nil {
		return nil, fmt.Errorf("fetch fundamentals: %w", err)
	}
	if fundamentals == nil {
		fundamentals = &model.FundamentalSnapshot{}
	}

	eng, err := engine.New(series, a.Params)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	indicators, err := eng.Compute()
	if err != nil {
		return nil, fmt.Errorf("compute indicators: %w", err)
	}
	rec := engine.Recommend(indicators.RSI, indicators.MACD, indicators.Signal, *fundamentals)

	return &Analysis{
		RunID:          runID,
		Ticker:         ticker,
		Source:         a.Fetcher.Name(),
		Fundamentals:   *fundamentals,
		Indicators:     *indicators,
		Recommendation: rec,
		Prices:         eng.Series(),
		GeneratedAt:    time.Now(),
	}, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrInvalidTicker):
		return "invalid_ticker"
	case errors.Is(err, collector.ErrNoData):
		return "no_data"
	default:
		return "error"
	}
}
