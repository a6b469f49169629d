package calculator

import (
	"errors"

	"StockScreener/internal/model"
)

var (
	ErrEmptySeries   = errors.New("empty price series")
	ErrInvalidPeriod = errors.New("period must be positive")
)

func checkInput(values []float64, period int) error {
	if len(values) == 0 {
		return ErrEmptySeries
	}
	if period <= 0 {
		return ErrInvalidPeriod
	}
	return nil
}

// SMA computes the simple moving average of closes over a trailing window.
// Entries before index window-1 are unavailable. A series shorter than the
// window is not an error; every entry is then unavailable.
func SMA(closes []float64, window int) ([]model.Metric, error) {
	if err := checkInput(closes, window); err != nil {
		return nil, err
	}
	out := make([]model.Metric, len(closes))
	for i := window - 1; i < len(closes); i++ {
		out[i] = model.Some(mean(closes[i-window+1 : i+1]))
	}
	return out, nil
}

// EMA computes the exponential moving average with alpha = 2/(span+1),
// seeded by the first value. Every entry is defined.
func EMA(values []float64, span int) ([]float64, error) {
	if err := checkInput(values, span); err != nil {
		return nil, err
	}
	alpha := 2.0 / float64(span+1)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out, nil
}

// Defined wraps a fully defined series as metrics.
func Defined(values []float64) []model.Metric {
	out := make([]model.Metric, len(values))
	for i, v := range values {
		out[i] = model.Some(v)
	}
	return out
}

func mean(window []float64) float64 {
	sum := 0.0
	for _, v := range window {
		sum += v
	}
	return sum / float64(len(window))
}
