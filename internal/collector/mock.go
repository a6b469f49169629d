package collector

import (
	"context"
	"math"
	"time"

	"StockScreener/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price        float64
	Bars         []model.OHLCV // when non-nil, returned as-is (empty means no data)
	Fundamentals *model.FundamentalSnapshot
	Err          error
	Now          func() time.Time
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchPriceHistory(_ context.Context, ticker, period string) (*model.PriceSeries, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if err := ValidatePeriod(period); err != nil {
		return nil, err
	}
	if m.Bars != nil {
		bars := make([]model.OHLCV, len(m.Bars))
		copy(bars, m.Bars)
		return finalizeBars(ticker, bars)
	}
	days, _ := PeriodDays(period)
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	return finalizeBars(ticker, generateMockBars(m.Price, days*252/365, now()))
}

func (m *MockFetcher) FetchFundamentals(_ context.Context, _ string) (*model.FundamentalSnapshot, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Fundamentals != nil {
		snap := *m.Fundamentals
		return &snap, nil
	}
	return &model.FundamentalSnapshot{
		PERatio:          model.Some(18.5),
		EPS:              model.Some(42.1),
		RevenueGrowthPct: model.Some(7.3),
		DebtToEquity:     model.Unavailable(),
	}, nil
}

// generateMockBars produces a gently trending, oscillating daily series ending at end.
func generateMockBars(basePrice float64, count int, end time.Time) []model.OHLCV {
	if basePrice <= 0 {
		basePrice = 100
	}
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001 + 0.04*math.Sin(float64(i)/9))
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
