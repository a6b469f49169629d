package model

import (
	"encoding/json"
	"math"
)

// Metric is a float value that is either present or explicitly unavailable.
// The zero value is unavailable.
type Metric struct {
	Value float64
	Valid bool
}

// Some returns a present metric. NaN and infinities are treated as unavailable.
func Some(v float64) Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Metric{}
	}
	return Metric{Value: v, Valid: true}
}

// Unavailable returns an absent metric.
func Unavailable() Metric { return Metric{} }

// FromPtr converts an optional decoded JSON number.
func FromPtr(v *float64) Metric {
	if v == nil {
		return Metric{}
	}
	return Some(*v)
}

// Get returns the value and whether it is present.
func (m Metric) Get() (float64, bool) { return m.Value, m.Valid }

func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

func (m *Metric) UnmarshalJSON(data []byte) error {
	var v *float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = FromPtr(v)
	return nil
}

// FundamentalSnapshot holds point-in-time valuation metrics for a ticker.
type FundamentalSnapshot struct {
	PERatio          Metric `json:"pe_ratio"`
	EPS              Metric `json:"eps"`
	RevenueGrowthPct Metric `json:"revenue_growth_pct"`
	DebtToEquity     Metric `json:"debt_to_equity"`
}
