package components

import (
	"strings"

	"fintrack/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar: key hints on the left,
// the transient message, loading state, or data age on the right.
func RenderStatusBar(width int, message, dataAge string, loading bool) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)

	left := " [?]help  [ ] month  [r]efresh  [q]uit"
	right := ""
	switch {
	case message != "":
		right = message + " "
	case loading:
		right = "Loading… "
	case dataAge != "":
		right = "Updated " + dataAge + " "
	}

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return style.Render(left + strings.Repeat(" ", padding) + right)
}
