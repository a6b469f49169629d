package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"StockScreener/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchPriceHistory returns daily bars for the trailing period.
	// An empty result is reported as *NoDataError.
	FetchPriceHistory(ctx context.Context, ticker, period string) (*model.PriceSeries, error)
	// FetchFundamentals returns the valuation snapshot; missing fields are unavailable.
	FetchFundamentals(ctx context.Context, ticker string) (*model.FundamentalSnapshot, error)
	Name() string
}

var (
	ErrNoData        = errors.New("no data found")
	ErrInvalidPeriod = errors.New("unsupported lookback period")
)

// NoDataError reports that the provider returned nothing for a ticker.
type NoDataError struct {
	Ticker string
}

func (e *NoDataError) Error() string { return fmt.Sprintf("No data found for %s", e.Ticker) }

func (e *NoDataError) Is(target error) bool { return target == ErrNoData }

// DefaultPeriod is the one-year lookback used when none is configured.
const DefaultPeriod = "1y"

var periodDays = map[string]int{
	"1mo": 30,
	"3mo": 90,
	"6mo": 180,
	"1y":  365,
	"2y":  730,
	"5y":  1825,
}

// PeriodDays returns the calendar days covered by a period string.
func PeriodDays(period string) (int, error) {
	days, ok := periodDays[period]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
	return days, nil
}

// ValidatePeriod checks that the period is one of 1mo, 3mo, 6mo, 1y, 2y, 5y.
func ValidatePeriod(period string) error {
	_, err := PeriodDays(period)
	return err
}

// finalizeBars sorts bars chronologically and keeps the last bar of each calendar day.
func finalizeBars(ticker string, bars []model.OHLCV) (*model.PriceSeries, error) {
	if len(bars) == 0 {
		return nil, &NoDataError{Ticker: ticker}
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	out := make([]model.OHLCV, 0, len(bars))
	for _, b := range bars {
		if n := len(out); n > 0 && model.DateKey(out[n-1].Time) == model.DateKey(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return &model.PriceSeries{Symbol: ticker, Bars: out, FetchedAt: time.Now()}, nil
}
