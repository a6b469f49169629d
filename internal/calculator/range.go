package calculator

import (
	"time"

	"StockScreener/internal/model"
)

// YearWindow is the calendar span of the 52-week range.
const YearWindow = 52 * 7 * 24 * time.Hour

// PriceRange is the high/low envelope of the bars inside a trailing calendar
// window, and where the latest close sits in it.
type PriceRange struct {
	High     model.Metric
	Low      model.Metric
	Position model.Metric
}

// TrailingRange covers every bar dated within window of the latest bar. Bars
// must be sorted by time. Position is the latest close scaled to 0..1 between
// Low and High and is unavailable when the envelope is flat.
func TrailingRange(bars []model.OHLCV, window time.Duration) (PriceRange, error) {
	if len(bars) == 0 {
		return PriceRange{}, ErrEmptySeries
	}
	if window <= 0 {
		return PriceRange{}, ErrInvalidPeriod
	}
	last := bars[len(bars)-1]
	cutoff := last.Time.Add(-window)

	high, low := last.High, last.Low
	for i := len(bars) - 2; i >= 0 && bars[i].Time.After(cutoff); i-- {
		high = max(high, bars[i].High)
		low = min(low, bars[i].Low)
	}

	r := PriceRange{High: model.Some(high), Low: model.Some(low)}
	if high > low {
		pos := (last.Close - low) / (high - low)
		r.Position = model.Some(min(max(pos, 0), 1))
	}
	return r, nil
}
