package tui

import (
	"fmt"
	"strings"

	"fintrack/internal/cli"
	"fintrack/internal/tui/components"
	"fintrack/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderBudgetsTab(cw int) string {
	t := theme.Active
	inner := components.CardInnerWidth(cw)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface)

	var b strings.Builder

	if a.budgetWarn != "" {
		b.WriteString(warnStyle.Render(a.budgetWarn))
		b.WriteString("\n\n")
	}

	if len(a.alerts) == 0 {
		b.WriteString(mutedStyle.Render("No budgets set."))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("Add one with: fintrack budget set <category> <limit>"))
		return components.ContentCard("Budgets · "+a.month.Label(), b.String(), cw)
	}

	for i, al := range a.alerts {
		if i > 0 {
			b.WriteString("\n")
		}
		sevStyle := lipgloss.NewStyle().Foreground(components.SeverityColor(al.Severity)).Background(t.Surface)
		paceStyle := lipgloss.NewStyle().Foreground(components.PaceColor(al.Pace)).Background(t.Surface)

		b.WriteString(components.PaceDot(al.Pace))
		b.WriteString(labelStyle.Render(" " + al.Category))
		b.WriteString(sevStyle.Render(fmt.Sprintf("  %s / %s (%d%%)",
			cli.FormatMoney(al.Spent), cli.FormatMoney(al.Limit), al.Percent)))
		b.WriteString("\n")
		b.WriteString(components.BudgetBar(al, inner))
		b.WriteString("\n")
		b.WriteString(paceStyle.Render("Pacing: " + cli.FormatPace(al)))
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  (day %d of %d)", al.DaysElapsed, al.TotalDays)))
		b.WriteString("\n")
	}

	if a.report != nil {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("Month expense: " + cli.FormatMoney(a.report.Summary.Expense)))
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render("Manage limits with fintrack budget set|rm"))

	return components.ContentCard("Budgets · "+a.month.Label(), b.String(), cw)
}
