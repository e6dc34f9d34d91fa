package tui

import (
	"fmt"
	"strings"

	"fintrack/internal/config"
	"fintrack/internal/tui/components"
	"fintrack/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Width(14)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	accentStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	mode := "light"
	if a.dark {
		mode = "dark"
	}
	rows := []struct{ label, value string }{
		{"Theme", fmt.Sprintf("%s (%s)", a.cfg.Appearance.Theme, mode)},
		{"API", a.cfg.API.BaseURL},
		{"Timeout", a.cfg.Timeout().String()},
		{"Store", a.cfg.Store.Backend},
		{"State path", a.cfg.StorePath()},
		{"Config", config.ConfigPath()},
		{"Month", a.month.Label()},
		{"Budgets", fmt.Sprintf("%d", a.book.Len())},
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(labelStyle.Render(r.label))
		b.WriteString(valueStyle.Render(r.value))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(accentStyle.Render("[t]"))
	b.WriteString(mutedStyle.Render(" toggle dark/light  "))
	b.WriteString(mutedStyle.Render("run fintrack setup to change the rest"))

	return components.ContentCard("Settings", b.String(), cw)
}
