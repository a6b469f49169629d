package strategy

import (
	"fmt"

	"StockScreener/internal/model"
)

const (
	rsiOversold   = 30.0
	rsiOverbought = 70.0
	peUndervalued = 15.0
	peOvervalued  = 25.0
)

// scoreRSI: oversold is bullish, overbought is bearish.
func scoreRSI(rsi model.Metric) model.FactorScore {
	v, ok := rsi.Get()
	if !ok {
		return model.FactorScore{Name: "RSI", Score: 0, Commentary: "RSI unavailable"}
	}

	var score int
	var commentary string
	switch {
	case v < rsiOversold:
		score = 1
		commentary = fmt.Sprintf("oversold (RSI=%.0f)", v)
	case v > rsiOverbought:
		score = -1
		commentary = fmt.Sprintf("overbought (RSI=%.0f)", v)
	default:
		commentary = fmt.Sprintf("neutral (RSI=%.0f)", v)
	}
	return model.FactorScore{Name: "RSI", Score: score, Commentary: commentary}
}

// scoreMACD compares the MACD line against its signal line.
func scoreMACD(macd, signal model.Metric) model.FactorScore {
	m, okM := macd.Get()
	s, okS := signal.Get()
	if !okM || !okS {
		return model.FactorScore{Name: "MACD", Score: 0, Commentary: "MACD unavailable"}
	}

	switch {
	case m > s:
		return model.FactorScore{Name: "MACD", Score: 1, Commentary: "bullish (MACD above signal)"}
	case m < s:
		return model.FactorScore{Name: "MACD", Score: -1, Commentary: "bearish (MACD below signal)"}
	default:
		return model.FactorScore{Name: "MACD", Score: 0, Commentary: "MACD equals signal"}
	}
}

// scorePERatio: a low P/E is undervalued, a high one overvalued.
func scorePERatio(pe model.Metric) model.FactorScore {
	v, ok := pe.Get()
	if !ok {
		return model.FactorScore{Name: "P/E", Score: 0, Commentary: "P/E unavailable"}
	}

	switch {
	case v < peUndervalued:
		return model.FactorScore{Name: "P/E", Score: 1, Commentary: fmt.Sprintf("undervalued (P/E=%.1f)", v)}
	case v > peOvervalued:
		return model.FactorScore{Name: "P/E", Score: -1, Commentary: fmt.Sprintf("overvalued (P/E=%.1f)", v)}
	default:
		return model.FactorScore{Name: "P/E", Score: 0, Commentary: fmt.Sprintf("fair (P/E=%.1f)", v)}
	}
}
