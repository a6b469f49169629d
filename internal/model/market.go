package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnorderedSeries = errors.New("price series is not in chronological order")
	ErrDuplicateDate   = errors.New("price series contains duplicate dates")
)

// OHLCV represents a single daily candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries holds the daily bars fetched for one ticker.
// Bars are strictly increasing by calendar date.
type PriceSeries struct {
	Symbol    string    `json:"symbol"`
	Currency  string    `json:"currency,omitempty"`
	Bars      []OHLCV   `json:"bars"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Len returns the number of bars.
func (p *PriceSeries) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Bars)
}

// Closes returns a fresh slice of closing prices.
func (p *PriceSeries) Closes() []float64 {
	closes := make([]float64, p.Len())
	for i := range closes {
		closes[i] = p.Bars[i].Close
	}
	return closes
}

// Dates returns a fresh slice of bar timestamps.
func (p *PriceSeries) Dates() []time.Time {
	dates := make([]time.Time, p.Len())
	for i := range dates {
		dates[i] = p.Bars[i].Time
	}
	return dates
}

// Latest returns the most recent bar. ok is false for an empty series.
func (p *PriceSeries) Latest() (bar OHLCV, ok bool) {
	if p.Len() == 0 {
		return OHLCV{}, false
	}
	return p.Bars[len(p.Bars)-1], true
}

// Clone returns a deep copy so each analysis run owns its bars.
func (p *PriceSeries) Clone() *PriceSeries {
	if p == nil {
		return nil
	}
	bars := make([]OHLCV, len(p.Bars))
	copy(bars, p.Bars)
	return &PriceSeries{Symbol: p.Symbol, Currency: p.Currency, Bars: bars, FetchedAt: p.FetchedAt}
}

// Validate checks that bar dates strictly increase with no duplicate calendar days.
func (p *PriceSeries) Validate() error {
	for i := 1; i < p.Len(); i++ {
		prev, cur := DateKey(p.Bars[i-1].Time), DateKey(p.Bars[i].Time)
		switch {
		case cur == prev:
			return fmt.Errorf("%w: %s", ErrDuplicateDate, cur)
		case cur < prev:
			return fmt.Errorf("%w: %s after %s", ErrUnorderedSeries, cur, prev)
		}
	}
	return nil
}

// DateKey formats t as a YYYY-MM-DD calendar key.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
