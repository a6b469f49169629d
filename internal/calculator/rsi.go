package calculator

import "StockScreener/internal/model"

// RSI computes the relative strength index from simple rolling means of
// gains and losses over the trailing period. Index 0 has no delta, so a full
// window of period deltas first exists at index period.
func RSI(closes []float64, period int) ([]model.Metric, error) {
	if err := checkInput(closes, period); err != nil {
		return nil, err
	}

	n := len(closes)
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change // make positive
		}
	}

	out := make([]model.Metric, n)
	for i := period; i < n; i++ {
		avgGain := mean(gains[i-period+1 : i+1])
		avgLoss := mean(losses[i-period+1 : i+1])
		out[i] = model.Some(rsiFromAverages(avgGain, avgLoss))
	}
	return out, nil
}

// rsiFromAverages maps average gain/loss to [0, 100].
// No losses gives 100; a flat window (no gains, no losses) gives 50.
func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50.0
		}
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
