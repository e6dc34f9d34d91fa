package components

import (
	"fmt"

	"fintrack/internal/model"
	"fintrack/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// SeverityColor maps a budget severity onto the active theme.
func SeverityColor(sev model.Severity) lipgloss.Color {
	t := theme.Active
	switch sev {
	case model.SeverityCritical:
		return t.Expense
	case model.SeverityWarning:
		return t.Warning
	default:
		return t.Accent
	}
}

// PaceColor is red over pace, green under, dim on pace.
func PaceColor(p model.Pace) lipgloss.Color {
	t := theme.Active
	switch p {
	case model.PaceOver:
		return t.Expense
	case model.PaceUnder:
		return t.Income
	default:
		return t.TextDim
	}
}

// BudgetBar renders the spend bar for one alert followed by its capped
// percentage, e.g. "██████░░░░  80%".
func BudgetBar(a model.Alert, width int) string {
	t := theme.Active
	color := SeverityColor(a.Severity)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(max(width-6, 4)),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return bar.ViewAs(float64(a.Percent)/100) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%4d%%", a.Percent))
}

// PaceDot renders the colored pace indicator.
func PaceDot(p model.Pace) string {
	t := theme.Active
	return lipgloss.NewStyle().Foreground(PaceColor(p)).Background(t.Surface).Render("●")
}
