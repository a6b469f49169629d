package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"StockScreener/internal/analyzer"
	"StockScreener/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Background(lipgloss.Color("#1F2937")).
			Padding(0, 1).
			MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF")).
			Width(22)

	valueStyle = lipgloss.NewStyle().
			Bold(true).
			Align(lipgloss.Right).
			Width(12)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	actionStyles = map[model.Action]lipgloss.Style{
		model.ActionBuy:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981")),
		model.ActionSell: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444")),
		model.ActionHold: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B")),
	}
)

func renderTable(heading string, rows []Row) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, lipgloss.NewStyle().Bold(true).Render(heading))
	for _, r := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(r.Metric), valueStyle.Render(r.Value)))
	}
	return sectionStyle.Render(strings.Join(lines, "\n"))
}

// RenderTerminal draws the analysis as two side-by-side tables and a recommendation box.
func RenderTerminal(a *analyzer.Analysis) string {
	title := titleStyle.Render(fmt.Sprintf("%s Stock Analysis", a.Ticker))

	tables := lipgloss.JoinHorizontal(lipgloss.Top,
		renderTable("Fundamental Metrics", FundamentalRows(a.Fundamentals)),
		" ",
		renderTable("Technical Indicators", TechnicalRows(a)),
	)

	rec := a.Recommendation
	style, ok := actionStyles[rec.Action]
	if !ok {
		style = actionStyles[model.ActionHold]
	}
	var factors strings.Builder
	for _, f := range rec.Factors {
		factors.WriteString(fmt.Sprintf("\n  %-5s %+d  %s", f.Name, f.Score, dimStyle.Render(f.Commentary)))
	}
	recBox := sectionStyle.
		BorderForeground(style.GetForeground()).
		Render(fmt.Sprintf("Recommendation: %s (score %+d)\n%s%s",
			style.Render(string(rec.Action)), rec.Score, rec.Reason, factors.String()))

	footer := dimStyle.Render(fmt.Sprintf("source %s · run %s · %s", a.Source, a.RunID, a.GeneratedAt.Format("2006-01-02 15:04:05")))

	return lipgloss.JoinVertical(lipgloss.Left, title, tables, recBox, footer) + "\n"
}
