package tui

import (
	"fmt"
	"strings"

	"fintrack/internal/cli"
	"fintrack/internal/model"
	"fintrack/internal/pipeline"
	"fintrack/internal/tui/components"
	"fintrack/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

const (
	tabOverview = iota
	tabTransactions
	tabBudgets
	tabSettings
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface)

	if a.monthErr != nil {
		return components.ContentCard("Overview",
			warnStyle.Render("Could not load "+a.month.Label()+": "+a.monthErr.Error())+"\n"+
				mutedStyle.Render("Press r to retry."), cw)
	}
	r := a.report
	if r == nil {
		return ""
	}

	var b strings.Builder
	s := r.Summary
	metrics := []components.Metric{
		{Label: "Income", Value: cli.FormatMoney(s.Income), ValueColor: t.Income},
		{Label: "Expense", Value: cli.FormatMoney(s.Expense), ValueColor: t.Expense},
		{Label: "Net", Value: cli.FormatSignedMoney(s.Net), ValueColor: netColor(s.Net)},
		{Label: "Transactions", Value: cli.FormatNumber(int64(s.Count))},
	}
	if c := r.Comparison; c != nil {
		metrics[0].Delta, metrics[0].DeltaColor = deltaText(c.Income, true)
		metrics[1].Delta, metrics[1].DeltaColor = deltaText(c.Expense, false)
		metrics[2].Delta, metrics[2].DeltaColor = deltaText(c.Net, true)
		metrics[3].Delta = cli.FormatCountDelta(c.Count.Delta) + " vs " + a.month.Prev().Label()
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	halves := components.LayoutRow(cw, 2)

	// Weekly chart
	values := make([]float64, len(r.Weeks))
	labels := make([]string, len(r.Weeks))
	for i, w := range r.Weeks {
		values[i] = w.Expense.InexactFloat64()
		labels[i] = fmt.Sprintf("W%d", i+1)
	}
	chart := components.ContentCard("Weekly Spend",
		components.BarChart(values, labels, components.CardInnerWidth(halves[0]), 8), halves[0])

	// Top categories
	var top strings.Builder
	if len(r.Top) == 0 {
		top.WriteString(mutedStyle.Render("No expenses this month."))
	}
	inner := components.CardInnerWidth(halves[1])
	nameW := min(16, inner/3)
	for i, c := range r.Top {
		if i > 0 {
			top.WriteString("\n")
		}
		top.WriteString(categoryBar(c, nameW, inner))
	}
	cats := components.ContentCard("Top Categories", top.String(), halves[1])

	b.WriteString(components.CardRow([]string{chart, cats}))
	b.WriteString("\n")

	if r.Insight != "" {
		b.WriteString(components.ContentCard("Insight",
			lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).
				Width(components.CardInnerWidth(cw)).Render(r.Insight), cw))
		b.WriteString("\n")
	}
	for _, w := range r.Warnings {
		b.WriteString(warnStyle.Render(" ⚠ " + w))
		b.WriteString("\n")
	}
	return b.String()
}

// categoryBar renders "Dining     ████░░  $120.00  34%".
func categoryBar(c model.CategoryShare, nameW, width int) string {
	t := theme.Active
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(t.Expense).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	valStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	val := fmt.Sprintf(" %s %3d%%", cli.FormatMoney(c.Spent), c.SharePercent)
	barW := max(width-nameW-lipgloss.Width(val)-1, 4)
	filled := min(barW*c.SharePercent/100, barW)

	name := cli.Truncate(c.Category, nameW)
	return nameStyle.Render(name+strings.Repeat(" ", nameW-lipgloss.Width(name)+1)) +
		barStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", barW-filled)) +
		valStyle.Render(val)
}

// deltaText formats a month-over-month change, colored by whether it moved
// in the good direction for the metric.
func deltaText(d model.MetricDelta, upIsGood bool) (string, lipgloss.Color) {
	t := theme.Active
	text := cli.FormatDelta(d.Delta, d.Percent)
	switch pipeline.DeltaTrend(d, upIsGood) {
	case pipeline.TrendGood:
		return text, t.Income
	case pipeline.TrendBad:
		return text, t.Expense
	default:
		return text, t.TextDim
	}
}

func netColor(net decimal.Decimal) lipgloss.Color {
	if net.IsNegative() {
		return theme.Active.Expense
	}
	return theme.Active.Income
}
