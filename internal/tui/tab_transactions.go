package tui

import (
	"fmt"
	"strings"

	"fintrack/internal/cli"
	"fintrack/internal/model"
	"fintrack/internal/pipeline"
	"fintrack/internal/tui/components"
	"fintrack/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func newSearchInput(value string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "merchant, category, or notes"
	ti.Prompt = "/ "
	ti.CharLimit = 100
	ti.Width = 40
	ti.SetValue(value)
	return ti
}

// updateTransactionsKey handles keys specific to the transactions tab.
// ok is false when the key should fall through to the global bindings.
func (a App) updateTransactionsKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.moveCursor(1)
	case "k", "up":
		a.moveCursor(-1)
	case "g":
		a.cursor = 0
	case "G":
		a.cursor = max(len(a.txs)-1, 0)
	case "s":
		a.setSort(a.sort.Next())
	case "S":
		a.setSort(a.sort.Toggle(a.sort.Key))
	case "w":
		weeks := len(pipeline.WeekRanges(a.month))
		a.week = (a.week + 1) % (weeks + 1)
		a.cursor = 0
		return a, a.reloadList(), true
	case "/":
		a.searching = true
		a.search = newSearchInput(a.filters.Q)
		a.search.Focus()
		return a, textinput.Blink, true
	case "c":
		a.filters = a.filters.Cleared()
		a.week = 0
		a.cursor = 0
		a.saveFilters()
		a.message = "Filters cleared"
		return a, a.reloadList(), true
	case "d":
		tx, ok := a.selected()
		if !ok {
			return a, nil, true
		}
		return a, duplicateCmd(a.backend, tx, a.now()), true
	case "x":
		tx, ok := a.selected()
		if !ok || tx.ID == nil {
			return a, nil, true
		}
		id := *tx.ID
		a.pendingDelete = &id
		a.message = fmt.Sprintf("Delete transaction %d? (y/n)", id)
	default:
		return a, nil, false
	}
	return a, nil, true
}

// updateSearch handles keys while the search box has focus.
func (a App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.searching = false
		a.filters.Q = strings.TrimSpace(a.search.Value())
		a.cursor = 0
		a.saveFilters()
		return a, a.reloadList()
	case "esc":
		a.searching = false
		return a, nil
	}
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	return a, cmd
}

func (a *App) moveCursor(delta int) {
	a.cursor = min(max(a.cursor+delta, 0), max(len(a.txs)-1, 0))
}

func (a *App) setSort(s pipeline.SortState) {
	a.sort = s
	a.txs = pipeline.SortTransactions(a.txs, s)
}

func (a App) selected() (model.Transaction, bool) {
	if a.cursor < 0 || a.cursor >= len(a.txs) {
		return model.Transaction{}, false
	}
	return a.txs[a.cursor], true
}

func (a App) renderTransactionsTab(cw, h int) string {
	t := theme.Active

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Selected).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface)

	inner := components.CardInnerWidth(cw)
	const (
		idW     = 6
		dateW   = 10
		amountW = 12
		catW    = 14
	)
	rest := max(inner-idW-dateW-amountW-catW-5, 16)
	merchantW := rest / 2
	notesW := rest - merchantW

	var b strings.Builder
	if a.searching {
		b.WriteString(a.search.View())
		b.WriteString("\n")
	}

	b.WriteString(headerStyle.Render(
		fmt.Sprintf("%-*s %-*s %-*s %*s %-*s %-*s",
			idW, "ID",
			dateW, "Date"+a.sort.Arrow(pipeline.SortDate),
			merchantW, "Merchant"+a.sort.Arrow(pipeline.SortMerchant),
			amountW, "Amount"+a.sort.Arrow(pipeline.SortAmount),
			catW, "Category"+a.sort.Arrow(pipeline.SortCategory),
			notesW, "Notes")))
	b.WriteString("\n")

	switch {
	case a.listErr != nil:
		b.WriteString(warnStyle.Render("Could not load transactions: " + a.listErr.Error()))
		b.WriteString("\n")
	case len(a.txs) == 0:
		b.WriteString(mutedStyle.Render("No transactions."))
		b.WriteString("\n")
	}

	// Visible window around the cursor
	visible := max(h-8, 3)
	start := 0
	if a.cursor >= visible {
		start = a.cursor - visible + 1
	}
	end := min(start+visible, len(a.txs))

	for i := start; i < end; i++ {
		tx := a.txs[i]
		amountColor := t.Expense
		if pipeline.IsIncome(tx) {
			amountColor = t.Income
		}
		style := rowStyle
		if i == a.cursor {
			style = selStyle
		}
		amount := lipgloss.NewStyle().Foreground(amountColor).Background(style.GetBackground()).
			Render(fmt.Sprintf("%*s", amountW, cli.FormatMoney(tx.Amount.Abs())))

		line := style.Render(fmt.Sprintf("%-*s %-*s %-*s ",
			idW, cli.FormatID(tx.ID),
			dateW, cli.Truncate(tx.Date, dateW),
			merchantW, cli.Truncate(tx.Merchant, merchantW))) +
			amount +
			style.Render(fmt.Sprintf(" %-*s %-*s",
				catW, cli.Truncate(tx.Category, catW),
				notesW, cli.Truncate(tx.Notes, notesW)))
		b.WriteString(line)
		b.WriteString("\n")
	}

	totals := pipeline.ShownTotals(a.txs)
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Totals (shown rows)  "))
	b.WriteString(lipgloss.NewStyle().Foreground(t.Expense).Background(t.Surface).Render("Expense: " + cli.FormatMoney(totals.Expense)))
	b.WriteString(mutedStyle.Render("  "))
	b.WriteString(lipgloss.NewStyle().Foreground(t.Income).Background(t.Surface).Render("Income: " + cli.FormatMoney(totals.Income)))
	b.WriteString(mutedStyle.Render("  "))
	b.WriteString(lipgloss.NewStyle().Foreground(netColor(totals.Net)).Background(t.Surface).Render("Net: " + cli.FormatSignedMoney(totals.Net)))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %d rows", len(a.txs))))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("[j/k] move  [s/S] sort  [w] week  [/] search  [c] clear  [d] duplicate  [x] delete"))

	return components.ContentCard("Transactions", b.String(), cw)
}
