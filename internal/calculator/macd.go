package calculator

import "fmt"

// MACDResult holds the MACD line, its signal line and the histogram.
type MACDResult struct {
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes EMA(fast) - EMA(slow) and its EMA(signal) line.
// All three series are defined from index 0.
func MACD(closes []float64, fast, slow, signal int) (*MACDResult, error) {
	if err := checkInput(closes, fast); err != nil {
		return nil, fmt.Errorf("fast ema: %w", err)
	}
	if slow <= 0 || signal <= 0 {
		return nil, ErrInvalidPeriod
	}

	emaFast, err := EMA(closes, fast)
	if err != nil {
		return nil, fmt.Errorf("fast ema: %w", err)
	}
	emaSlow, err := EMA(closes, slow)
	if err != nil {
		return nil, fmt.Errorf("slow ema: %w", err)
	}

	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = emaFast[i] - emaSlow[i]
	}
	sig, err := EMA(line, signal)
	if err != nil {
		return nil, fmt.Errorf("signal ema: %w", err)
	}

	hist := make([]float64, len(closes))
	for i := range line {
		hist[i] = line[i] - sig[i]
	}
	return &MACDResult{MACD: line, Signal: sig, Histogram: hist}, nil
}
