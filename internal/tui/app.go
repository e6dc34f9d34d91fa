// Package tui provides the interactive Bubble Tea dashboard for fintrack.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/api"
	"fintrack/internal/budget"
	"fintrack/internal/config"
	"fintrack/internal/kv"
	"fintrack/internal/logger"
	"fintrack/internal/model"
	"fintrack/internal/pipeline"
	"fintrack/internal/prefs"
	"fintrack/internal/report"
	"fintrack/internal/tui/components"
	"fintrack/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

// Backend is the part of the transaction service the dashboard uses.
type Backend interface {
	report.Source
	ListTransactions(ctx context.Context, q api.ListQuery) ([]model.Transaction, error)
	Create(ctx context.Context, tx model.Transaction) (model.Transaction, error)
	Delete(ctx context.Context, id int64) error
}

// Options configures a new App.
type Options struct {
	Backend   Backend
	State     kv.Store
	Config    config.Config
	Month     model.Month
	Filters   prefs.Filters
	Log       zerolog.Logger
	NeedSetup bool
}

// monthLoadedMsg carries the month report and budget alerts for one load.
type monthLoadedMsg struct {
	gen     uint64
	report  *report.Month
	alerts  []model.Alert
	warning string
	err     error
}

// listLoadedMsg carries the filtered transaction list for one load.
type listLoadedMsg struct {
	gen uint64
	txs []model.Transaction
	err error
}

// mutationMsg reports the outcome of an add, duplicate, or delete.
type mutationMsg struct {
	text string
	err  error
}

// App is the root Bubble Tea model.
type App struct {
	backend Backend
	state   kv.Store
	cfg     config.Config
	log     zerolog.Logger
	now     func() time.Time

	// Query state
	month   model.Month
	filters prefs.Filters
	week    int // 1-based week filter; 0 shows the filtered range
	sort    pipeline.SortState
	book    *budget.Book

	// Results. Each load carries a generation; results from an older
	// generation than the latest request are dropped.
	monthGen     uint64
	listGen      uint64
	loadingMonth bool
	loadingList  bool
	report       *report.Month
	monthErr     error
	alerts       []model.Alert
	budgetWarn   string
	txs          []model.Transaction
	listErr      error

	// UI state
	width         int
	height        int
	activeTab     int
	showHelp      bool
	cursor        int
	searching     bool
	search        textinput.Model
	pendingDelete *int64
	message       string
	dark          bool
	spinner       spinner.Model

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool
}

const (
	minTerminalWidth = 80
	maxContentWidth  = 160
	minContentHeight = 5
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	dark, err := prefs.LoadDarkMode(opts.State)
	if err != nil {
		opts.Log.Debug().Err(err).Msg("loading theme preference")
	}
	if !prefs.HasDarkMode(opts.State) {
		dark = theme.TerminalIsDark()
	}
	theme.Active = theme.ForMode(opts.Config.Appearance.Theme, dark)
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	book, err := budget.Load(opts.State)
	if err != nil {
		opts.Log.Debug().Err(err).Msg("loading budgets")
	}

	filters := opts.Filters
	if filters.Month != opts.Month.String() {
		filters = filters.WithMonth(opts.Month)
	}

	a := App{
		backend:      opts.Backend,
		state:        opts.State,
		cfg:          opts.Config,
		log:          opts.Log,
		now:          time.Now,
		month:        opts.Month,
		filters:      filters,
		sort:         pipeline.DefaultSort(),
		book:         book,
		monthGen:     1,
		listGen:      1,
		loadingMonth: true,
		loadingList:  true,
		dark:         dark,
		spinner:      sp,
		needSetup:    opts.NeedSetup,
	}
	if a.needSetup {
		a.setupForm, a.setupVals = NewSetupForm(opts.Config)
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseCellMotion,
		a.spinner.Tick,
		loadMonthCmd(logger.WithContext(context.Background(), a.log), a.monthGen, a.backend, a.month, a.book.List(), a.now()),
		loadListCmd(a.listGen, a.backend, a.query()),
	}
	if a.setupForm != nil {
		cmds = append(cmds, a.setupForm.Init())
	}
	return tea.Batch(cmds...)
}

// query is the list request for the current filters and week.
func (a App) query() api.ListQuery {
	q := api.ListQuery{Q: a.filters.Q, From: a.filters.From, To: a.filters.To, Category: a.filters.Category}
	if a.week > 0 {
		if from, to, err := pipeline.WeekRange(a.month, a.week); err == nil {
			q.From, q.To = from, to
		}
	}
	return q
}

func (a *App) reloadMonth() tea.Cmd {
	a.monthGen++
	a.loadingMonth = true
	return loadMonthCmd(logger.WithContext(context.Background(), a.log), a.monthGen, a.backend, a.month, a.book.List(), a.now())
}

func (a *App) reloadList() tea.Cmd {
	a.listGen++
	a.loadingList = true
	return loadListCmd(a.listGen, a.backend, a.query())
}

func (a *App) reloadAll() tea.Cmd {
	return tea.Batch(a.reloadMonth(), a.reloadList())
}

// setMonth switches month, resetting the date range and week filter.
func (a *App) setMonth(m model.Month) tea.Cmd {
	a.month = m
	a.filters = a.filters.WithMonth(m)
	a.week = 0
	a.cursor = 0
	a.saveFilters()
	return a.reloadAll()
}

func (a *App) saveFilters() {
	if err := prefs.SaveFilters(a.state, a.filters); err != nil {
		a.log.Debug().Err(err).Msg("saving filters")
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if a.showHelp || a.setupForm != nil {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == tabTransactions {
				a.moveCursor(-1)
			}
		case tea.MouseButtonWheelDown:
			if a.activeTab == tabTransactions {
				a.moveCursor(1)
			}
		case tea.MouseButtonLeft:
			if msg.Action == tea.MouseActionPress && msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case monthLoadedMsg:
		if msg.gen != a.monthGen {
			a.log.Debug().Uint64("gen", msg.gen).Uint64("latest", a.monthGen).Msg("dropping stale month load")
			return a, nil
		}
		a.loadingMonth = false
		a.monthErr = msg.err
		if msg.err == nil {
			a.report = msg.report
		} else {
			a.report = nil
		}
		a.alerts = msg.alerts
		a.budgetWarn = msg.warning
		return a, nil

	case listLoadedMsg:
		if msg.gen != a.listGen {
			a.log.Debug().Uint64("gen", msg.gen).Uint64("latest", a.listGen).Msg("dropping stale list load")
			return a, nil
		}
		a.loadingList = false
		a.listErr = msg.err
		if msg.err != nil {
			a.txs = nil
		} else {
			a.txs = pipeline.SortTransactions(msg.txs, a.sort)
		}
		a.cursor = min(a.cursor, max(len(a.txs)-1, 0))
		return a, nil

	case mutationMsg:
		if msg.err != nil {
			a.message = "Error: " + msg.err.Error()
			return a, nil
		}
		a.message = msg.text
		return a, a.reloadAll()

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.searching {
		var cmd tea.Cmd
		a.search, cmd = a.search.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	if a.searching {
		return a.updateSearch(msg)
	}

	if a.pendingDelete != nil {
		id := *a.pendingDelete
		a.pendingDelete = nil
		if key == "y" || key == "Y" {
			a.message = ""
			return a, deleteCmd(a.backend, id)
		}
		a.message = "Delete cancelled"
		return a, nil
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	if a.activeTab == tabTransactions {
		if m, cmd, ok := a.updateTransactionsKey(key); ok {
			return m, cmd
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "[":
		return a, a.setMonth(a.month.Prev())
	case "]":
		return a, a.setMonth(a.month.Next())
	case "r":
		a.message = ""
		return a, a.reloadAll()
	case "t":
		a.toggleTheme()
		return a, nil
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if idx := components.TabIdxByKey(key); idx >= 0 {
		a.activeTab = idx
	}
	return a, nil
}

// toggleTheme flips between the light and dark theme and remembers it.
func (a *App) toggleTheme() {
	a.dark = !a.dark
	theme.Active = theme.ForMode(a.cfg.Appearance.Theme, a.dark)
	a.spinner.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)
	if err := prefs.SaveDarkMode(a.state, a.dark); err != nil {
		a.log.Debug().Err(err).Msg("saving theme preference")
	}
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.setupForm = nil
		a.needSetup = false
		cfg := a.setupVals.Apply(a.cfg)
		if err := config.Save(cfg); err != nil {
			a.message = "Could not save config: " + err.Error()
		} else {
			a.message = "Saved to " + config.ConfigPath()
		}
		if cfg.API.BaseURL != a.cfg.API.BaseURL {
			a.backend = api.NewClient(cfg.API.BaseURL, api.WithTimeout(cfg.Timeout()), api.WithLogger(a.log))
		}
		a.cfg = cfg
		theme.Active = theme.ForMode(cfg.Appearance.Theme, a.dark)
		return a, a.reloadAll()
	case huh.StateAborted:
		a.setupForm = nil
		a.needSetup = false
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.report == nil && a.monthErr == nil && a.loadingMonth {
		return a.viewLoading()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  fintrack needs at least %d columns.\n",
		a.width, minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ fintrack"))
	b.WriteString(subtitleStyle.Render(" · " + a.month.Label()))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(" Loading from " + a.cfg.API.BaseURL))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	bindings := []struct{ key, desc string }{
		{"1 2 3 4", "Jump to tab"},
		{"← →", "Previous / Next tab"},
		{"[ ]", "Previous / Next month"},
		{"j k", "Move in transaction list"},
		{"s S", "Next sort column / Flip direction"},
		{"w", "Cycle week filter"},
		{"/", "Search"},
		{"c", "Clear filters"},
		{"d", "Duplicate transaction"},
		{"x", "Delete transaction"},
		{"t", "Toggle light / dark"},
		{"r", "Refresh"},
		{"q", "Quit"},
	}
	for _, bind := range bindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-8s", bind.key)),
			descStyle.Render(bind.desc))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()

	pillStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accentStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	filterStr := pillStyle.Render(" ") + accentStyle.Render(a.month.Label())
	if a.week > 0 {
		filterStr += pillStyle.Render(" │ ") + accentStyle.Render(fmt.Sprintf("week %d", a.week))
	}
	if a.filters.Q != "" {
		filterStr += pillStyle.Render(" │ ") + accentStyle.Render("“"+a.filters.Q+"”")
	}
	if a.filters.Category != "" {
		filterStr += pillStyle.Render(" │ ") + accentStyle.Render(a.filters.Category)
	}
	header := components.RenderTabBar(a.activeTab, w) + "\n" +
		lipgloss.NewStyle().Background(t.Surface).Width(w).Render(filterStr)

	dataAge := ""
	if a.report != nil {
		dataAge = a.report.FetchedAt.Format("15:04:05")
	}
	statusBar := components.RenderStatusBar(w, a.message, dataAge, a.loadingMonth || a.loadingList)

	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case tabOverview:
		content = a.renderOverviewTab(cw)
	case tabTransactions:
		content = a.renderTransactionsTab(cw, contentH)
	case tabBudgets:
		content = a.renderBudgetsTab(cw)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, a.height, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Commands ───────────────────────────────────────────────────

// loadMonthCmd builds the month report and evaluates budgets against its
// transactions. When the month cannot be read, budgets are evaluated
// against zero spend and the warning says why.
func loadMonthCmd(ctx context.Context, gen uint64, b Backend, m model.Month, budgets []model.Budget, now time.Time) tea.Cmd {
	return func() tea.Msg {
		r, err := report.Build(ctx, b, m)
		msg := monthLoadedMsg{gen: gen, report: r, err: err}
		var txs []model.Transaction
		if err != nil {
			msg.warning = fmt.Sprintf("Could not load %s transactions for budgets: %v", m, err)
		} else {
			txs = r.Transactions
		}
		msg.alerts = budget.Evaluate(budgets, txs, m, now)
		return msg
	}
}

func loadListCmd(gen uint64, b Backend, q api.ListQuery) tea.Cmd {
	return func() tea.Msg {
		txs, err := b.ListTransactions(context.Background(), q)
		return listLoadedMsg{gen: gen, txs: txs, err: err}
	}
}

func duplicateCmd(b Backend, tx model.Transaction, today time.Time) tea.Cmd {
	return func() tea.Msg {
		if _, err := b.Create(context.Background(), tx.Duplicate(today)); err != nil {
			return mutationMsg{err: fmt.Errorf("duplicating: %w", err)}
		}
		return mutationMsg{text: "Transaction duplicated"}
	}
}

func deleteCmd(b Backend, id int64) tea.Cmd {
	return func() tea.Msg {
		if err := b.Delete(context.Background(), id); err != nil {
			return mutationMsg{err: fmt.Errorf("deleting: %w", err)}
		}
		return mutationMsg{text: "Transaction deleted"}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with the background
// color so gaps between cards are not left unstyled.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes follow the widths RenderTabBar uses.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		w := components.TabVisualWidth(tab)
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + 1 // separator
	}
	return -1
}
