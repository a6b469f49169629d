package model

import "time"

// IndicatorSeries is a derived series aligned index-for-index with a PriceSeries.
// Leading values stay unavailable until enough history has accumulated.
type IndicatorSeries struct {
	Name   string      `json:"name"`
	Dates  []time.Time `json:"dates"`
	Values []Metric    `json:"values"`
}

// NewIndicatorSeries pairs computed values with the source dates.
func NewIndicatorSeries(name string, dates []time.Time, values []Metric) IndicatorSeries {
	return IndicatorSeries{Name: name, Dates: dates, Values: values}
}

// Len returns the number of points.
func (s IndicatorSeries) Len() int { return len(s.Values) }

// Latest returns the most recent value, unavailable for an empty series.
func (s IndicatorSeries) Latest() Metric {
	if len(s.Values) == 0 {
		return Unavailable()
	}
	return s.Values[len(s.Values)-1]
}

// IndicatorSet holds every derived series of one analysis run.
type IndicatorSet struct {
	SMA       IndicatorSeries `json:"sma"`
	RSI       IndicatorSeries `json:"rsi"`
	MACD      IndicatorSeries `json:"macd"`
	Signal    IndicatorSeries `json:"signal"`
	Histogram IndicatorSeries `json:"histogram"`
	UpperBand IndicatorSeries `json:"upper_band"`
	LowerBand IndicatorSeries `json:"lower_band"`
	High52w   Metric          `json:"high_52w"`
	Low52w    Metric          `json:"low_52w"`

	// Position52w is where the latest close sits in the 52-week range (0.0~1.0).
	Position52w Metric `json:"position_52w"`
}
