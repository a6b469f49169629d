package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"StockScreener/internal/analyzer"
	"StockScreener/internal/model"
)

// NA is shown for every value the provider or the engine could not supply.
const NA = "N/A"

// Row is one label/value line of a metrics table.
type Row struct {
	Metric string `json:"metric"`
	Value  string `json:"value"`
}

// FormatMetric rounds to two decimals (half away from zero) or returns NA.
func FormatMetric(m model.Metric) string {
	v, ok := m.Get()
	if !ok {
		return NA
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// FundamentalRows lists the valuation table in display order.
func FundamentalRows(f model.FundamentalSnapshot) []Row {
	return []Row{
		{"P/E Ratio", FormatMetric(f.PERatio)},
		{"EPS", FormatMetric(f.EPS)},
		{"Revenue Growth (%)", FormatMetric(f.RevenueGrowthPct)},
		{"Debt/Equity", FormatMetric(f.DebtToEquity)},
	}
}

// TechnicalRows lists the latest value of each indicator series.
func TechnicalRows(a *analyzer.Analysis) []Row {
	rows := make([]Row, 0, 11)
	if last, ok := a.Prices.Latest(); ok {
		rows = append(rows, Row{"Last Close", FormatMetric(model.Some(last.Close))})
	}
	ind := a.Indicators
	for _, s := range []model.IndicatorSeries{ind.SMA, ind.RSI, ind.MACD, ind.Signal, ind.Histogram, ind.UpperBand, ind.LowerBand} {
		rows = append(rows, Row{s.Name, FormatMetric(s.Latest())})
	}
	rows = append(rows,
		Row{"52W High", FormatMetric(ind.High52w)},
		Row{"52W Low", FormatMetric(ind.Low52w)},
	)
	if pos, ok := ind.Position52w.Get(); ok {
		rows = append(rows, Row{"52W Position (%)", FormatMetric(model.Some(pos * 100))})
	} else {
		rows = append(rows, Row{"52W Position (%)", NA})
	}
	return rows
}

// ChartData is the overlay chart payload: closes plus SMA and bands, null where undefined.
type ChartData struct {
	Labels []string   `json:"labels"`
	Close  []*float64 `json:"close"`
	SMA    []*float64 `json:"sma"`
	Upper  []*float64 `json:"upper"`
	Lower  []*float64 `json:"lower"`

	SMALabel string `json:"sma_label"`
}

// BuildChart aligns every dataset to the full date range of the price series.
func BuildChart(a *analyzer.Analysis) ChartData {
	n := a.Prices.Len()
	c := ChartData{
		Labels:   make([]string, n),
		Close:    make([]*float64, n),
		SMA:      points(a.Indicators.SMA, n),
		Upper:    points(a.Indicators.UpperBand, n),
		Lower:    points(a.Indicators.LowerBand, n),
		SMALabel: a.Indicators.SMA.Name,
	}
	for i, b := range a.Prices.Bars {
		c.Labels[i] = model.DateKey(b.Time)
		v := b.Close
		c.Close[i] = &v
	}
	return c
}

func points(s model.IndicatorSeries, n int) []*float64 {
	out := make([]*float64, n)
	for i := 0; i < n && i < s.Len(); i++ {
		if v, ok := s.Values[i].Get(); ok {
			out[i] = &v
		}
	}
	return out
}

// FormatPlain renders the analysis as plain text for logs and non-TTY output.
func FormatPlain(a *analyzer.Analysis) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s | %s | run %s\n\n", a.Ticker, a.GeneratedAt.Format("2006-01-02 15:04"), a.RunID))

	b.WriteString("Fundamental Metrics:\n")
	for _, r := range FundamentalRows(a.Fundamentals) {
		b.WriteString(fmt.Sprintf("  %-20s %s\n", r.Metric, r.Value))
	}

	b.WriteString("\nTechnical Indicators:\n")
	for _, r := range TechnicalRows(a) {
		b.WriteString(fmt.Sprintf("  %-20s %s\n", r.Metric, r.Value))
	}

	b.WriteString("\nFactors:\n")
	for _, f := range a.Recommendation.Factors {
		b.WriteString(fmt.Sprintf("  %s(%s): %+d\n", f.Name, f.Commentary, f.Score))
	}
	b.WriteString("  ─────────────────\n")
	b.WriteString(fmt.Sprintf("  Score: %+d\n\n", a.Recommendation.Score))

	b.WriteString(fmt.Sprintf("Recommendation: %s\n", a.Recommendation.Action))
	b.WriteString(fmt.Sprintf("Reason: %s\n", a.Recommendation.Reason))
	return b.String()
}
