// Package engine computes indicator series and a recommendation for one
// price series. An Engine is immutable after construction and safe to use
// from a single analysis run.
package engine

import (
	"fmt"
	"time"

	"StockScreener/internal/calculator"
	"StockScreener/internal/model"
	"StockScreener/internal/strategy"
)

// Params are the indicator windows used by Compute and GenerateRecommendation.
type Params struct {
	SMAWindow       int
	RSIPeriod       int
	MACDFast        int
	MACDSlow        int
	MACDSignal      int
	BollingerWindow int
	BollingerStd    float64
}

// DefaultParams returns SMA 20, RSI 14, MACD 12/26/9 and Bollinger 20/2.
func DefaultParams() Params {
	return Params{
		SMAWindow:       20,
		RSIPeriod:       14,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
		BollingerWindow: 20,
		BollingerStd:    2,
	}
}

// Engine owns one price series for the duration of an analysis run.
type Engine struct {
	series *model.PriceSeries
	closes []float64
	dates  []time.Time
	params Params
}

// New copies the series into a new Engine. An empty series is rejected.
func New(series *model.PriceSeries, params Params) (*Engine, error) {
	if series.Len() == 0 {
		return nil, calculator.ErrEmptySeries
	}
	owned := series.Clone()
	return &Engine{
		series: owned,
		closes: owned.Closes(),
		dates:  owned.Dates(),
		params: params,
	}, nil
}

// Series returns the engine's copy of the price series.
func (e *Engine) Series() *model.PriceSeries { return e.series }

func (e *Engine) wrap(name string, values []model.Metric) model.IndicatorSeries {
	return model.NewIndicatorSeries(name, e.dates, values)
}

// SimpleMovingAverage returns SMA(window) aligned with the price series.
func (e *Engine) SimpleMovingAverage(window int) (model.IndicatorSeries, error) {
	values, err := calculator.SMA(e.closes, window)
	if err != nil {
		return model.IndicatorSeries{}, fmt.Errorf("sma(%d): %w", window, err)
	}
	return e.wrap(fmt.Sprintf("SMA (%d)", window), values), nil
}

// RelativeStrengthIndex returns RSI(periods) aligned with the price series.
func (e *Engine) RelativeStrengthIndex(periods int) (model.IndicatorSeries, error) {
	values, err := calculator.RSI(e.closes, periods)
	if err != nil {
		return model.IndicatorSeries{}, fmt.Errorf("rsi(%d): %w", periods, err)
	}
	return e.wrap(fmt.Sprintf("RSI (%d)", periods), values), nil
}

// MACD returns the MACD line and its signal line.
func (e *Engine) MACD(fast, slow, signal int) (macd, sig model.IndicatorSeries, err error) {
	macd, sig, _, err = e.macdSet(fast, slow, signal)
	return macd, sig, err
}

// MACDHistogram returns MACD minus its signal line.
func (e *Engine) MACDHistogram(fast, slow, signal int) (model.IndicatorSeries, error) {
	_, _, hist, err := e.macdSet(fast, slow, signal)
	return hist, err
}

func (e *Engine) macdSet(fast, slow, signal int) (macd, sig, hist model.IndicatorSeries, err error) {
	res, err := calculator.MACD(e.closes, fast, slow, signal)
	if err != nil {
		return macd, sig, hist, fmt.Errorf("macd(%d,%d,%d): %w", fast, slow, signal, err)
	}
	return e.wrap("MACD", calculator.Defined(res.MACD)),
		e.wrap("Signal Line", calculator.Defined(res.Signal)),
		e.wrap("MACD Histogram", calculator.Defined(res.Histogram)), nil
}

// BollingerBands returns the upper and lower bands.
func (e *Engine) BollingerBands(window int, numStd float64) (upper, lower model.IndicatorSeries, err error) {
	bands, err := calculator.BollingerBands(e.closes, window, numStd)
	if err != nil {
		return model.IndicatorSeries{}, model.IndicatorSeries{}, fmt.Errorf("bollinger(%d): %w", window, err)
	}
	return e.wrap("Upper Bollinger Band", bands.Upper), e.wrap("Lower Bollinger Band", bands.Lower), nil
}

// Compute returns every indicator series using the engine's params.
func (e *Engine) Compute() (*model.IndicatorSet, error) {
	p := e.params
	set := &model.IndicatorSet{}
	var err error

	if set.SMA, err = e.SimpleMovingAverage(p.SMAWindow); err != nil {
		return nil, err
	}
	if set.RSI, err = e.RelativeStrengthIndex(p.RSIPeriod); err != nil {
		return nil, err
	}
	if set.MACD, set.Signal, set.Histogram, err = e.macdSet(p.MACDFast, p.MACDSlow, p.MACDSignal); err != nil {
		return nil, err
	}
	if set.UpperBand, set.LowerBand, err = e.BollingerBands(p.BollingerWindow, p.BollingerStd); err != nil {
		return nil, err
	}

	yr, err := calculator.TrailingRange(e.series.Bars, calculator.YearWindow)
	if err != nil {
		return nil, fmt.Errorf("52-week range: %w", err)
	}
	set.High52w, set.Low52w, set.Position52w = yr.High, yr.Low, yr.Position
	return set, nil
}

// GenerateRecommendation scores the latest RSI, MACD, signal and P/E.
func (e *Engine) GenerateRecommendation(fundamentals model.FundamentalSnapshot) (model.Recommendation, error) {
	rsi, err := e.RelativeStrengthIndex(e.params.RSIPeriod)
	if err != nil {
		return model.Recommendation{}, err
	}
	macd, sig, err := e.MACD(e.params.MACDFast, e.params.MACDSlow, e.params.MACDSignal)
	if err != nil {
		return model.Recommendation{}, err
	}
	return Recommend(rsi, macd, sig, fundamentals), nil
}

// Recommend scores already computed series; it never fails.
func Recommend(rsi, macd, signal model.IndicatorSeries, fundamentals model.FundamentalSnapshot) model.Recommendation {
	return strategy.Evaluate(strategy.Inputs{
		RSI:     rsi.Latest(),
		MACD:    macd.Latest(),
		Signal:  signal.Latest(),
		PERatio: fundamentals.PERatio,
	})
}
