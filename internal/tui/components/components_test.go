package components

import (
	"strings"
	"testing"

	"fintrack/internal/model"
	"fintrack/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRowSumsToWidth(t *testing.T) {
	for _, tt := range []struct{ width, n int }{{80, 4}, {81, 4}, {7, 3}, {100, 1}} {
		widths := LayoutRow(tt.width, tt.n)
		sum := 0
		for _, w := range widths {
			sum += w
		}
		if len(widths) != tt.n || sum != tt.width {
			t.Errorf("LayoutRow(%d, %d) = %v", tt.width, tt.n, widths)
		}
	}
	if LayoutRow(10, 0) != nil {
		t.Error("LayoutRow(10, 0) should be nil")
	}
}

func TestCardRowPadsShortCards(t *testing.T) {
	theme.SetActive("flexoki-dark")

	short := ContentCard("Short", "Content", 22)
	tall := ContentCard("Tall", "1\n2\n3\n4\n5", 22)

	joined := CardRow([]string{tall, short})
	lines := strings.Split(joined, "\n")
	if want := lipgloss.Height(tall); len(lines) != want {
		t.Fatalf("joined height = %d, want %d", len(lines), want)
	}
	shortLines := lipgloss.Height(short)
	for i := shortLines; i < len(lines); i++ {
		if !strings.Contains(lines[i], "\x1b[") {
			t.Errorf("line %d under the short card has no background styling", i)
		}
	}
}

func TestMetricCardWidth(t *testing.T) {
	theme.SetActive("flexoki-dark")
	card := MetricCard(Metric{Label: "Income", Value: "$1,200.00", Delta: "+$20.00"}, 24)
	if got := lipgloss.Width(card); got != 24 {
		t.Errorf("card width = %d, want 24", got)
	}
	if lipgloss.Height(card) != 5 {
		t.Errorf("card height = %d, want 5", lipgloss.Height(card))
	}
}

func TestTabIdxByKey(t *testing.T) {
	for i, tab := range Tabs {
		if got := TabIdxByKey(tab.Key); got != i {
			t.Errorf("TabIdxByKey(%q) = %d, want %d", tab.Key, got, i)
		}
	}
	if TabIdxByKey("9") != -1 {
		t.Error("unknown key should map to -1")
	}
}

func TestRenderTabBarWidth(t *testing.T) {
	bar := RenderTabBar(1, 100)
	if got := lipgloss.Width(bar); got != 100 {
		t.Errorf("tab bar width = %d, want 100", got)
	}
	total := len(Tabs) - 1 // separators
	for _, tab := range Tabs {
		total += TabVisualWidth(tab)
	}
	if !strings.Contains(bar, "Transactions") || total > 100 {
		t.Errorf("tabs do not fit: total width %d", total)
	}
}

func TestBarChartShape(t *testing.T) {
	chart := BarChart([]float64{100, 0, 250, 40, 10}, []string{"W1", "W2", "W3", "W4", "W5"}, 60, 8)
	lines := strings.Split(chart, "\n")
	last := lines[len(lines)-1]
	for _, lbl := range []string{"W1", "W5"} {
		if !strings.Contains(last, lbl) {
			t.Errorf("label row %q missing %s", last, lbl)
		}
	}
	if !strings.Contains(chart, "└") {
		t.Error("chart has no axis")
	}
	if BarChart(nil, nil, 60, 8) != "" {
		t.Error("empty chart should render nothing")
	}
}

func TestFormatChartLabel(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{250, "$250"},
		{1000, "$1k"},
		{1500, "$1.5k"},
		{2e6, "$2M"},
		{0.5, "$0.50"},
	}
	for _, tt := range tests {
		if got := formatChartLabel(tt.in); got != tt.want {
			t.Errorf("formatChartLabel(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBudgetBarShowsPercent(t *testing.T) {
	bar := BudgetBar(model.Alert{Percent: 80, Severity: model.SeverityWarning}, 30)
	if !strings.Contains(bar, "80%") {
		t.Errorf("bar %q missing percent", bar)
	}
}
