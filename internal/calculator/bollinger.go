package calculator

import (
	"math"

	"StockScreener/internal/model"
)

// Bands holds the Bollinger envelope around the moving average.
type Bands struct {
	Middle []model.Metric
	Upper  []model.Metric
	Lower  []model.Metric
}

// BollingerBands computes SMA(window) +/- numStd sample standard deviations.
// Values are unavailable wherever the SMA is, and everywhere when window < 2
// since the sample deviation of a single point is undefined.
func BollingerBands(closes []float64, window int, numStd float64) (*Bands, error) {
	middle, err := SMA(closes, window)
	if err != nil {
		return nil, err
	}
	n := len(closes)
	bands := &Bands{
		Middle: middle,
		Upper:  make([]model.Metric, n),
		Lower:  make([]model.Metric, n),
	}
	if window < 2 {
		return bands, nil
	}
	for i := window - 1; i < n; i++ {
		center, _ := middle[i].Get()
		width := numStd * sampleStdDev(closes[i-window+1:i+1], center)
		bands.Upper[i] = model.Some(center + width)
		bands.Lower[i] = model.Some(center - width)
	}
	return bands, nil
}

func sampleStdDev(window []float64, mean float64) float64 {
	sq := 0.0
	for _, v := range window {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(window)-1))
}
