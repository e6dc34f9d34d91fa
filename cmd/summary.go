package cmd

import (
	"fmt"
	"os"

	"fintrack/internal/cli"
	"fintrack/internal/logger"
	"fintrack/internal/model"
	"fintrack/internal/pipeline"
	"fintrack/internal/report"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Monthly summary with comparison and weekly spend",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	f := s.filters()
	m, err := s.month(f)
	if err != nil {
		return err
	}
	s.rememberMonth(f, m)

	progress("Loading %s from %s...", m, s.client.BaseURL())
	r, err := report.Build(logger.WithContext(cmd.Context(), logger.Component(s.log, "report")), s.client, m)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("FINANCES  %s", m.Label())))
	fmt.Println()

	sum := r.Summary
	rows := [][]string{
		{"Income", cli.RenderIncome(cli.FormatMoney(sum.Income))},
		{"Expense", cli.RenderExpense(cli.FormatMoney(sum.Expense))},
		{"Net", cli.RenderNet(cli.FormatSignedMoney(sum.Net), sum.Net.IsNegative())},
		{"Transactions", cli.FormatNumber(int64(sum.Count))},
	}
	if c := r.Comparison; c != nil {
		rows = append(rows,
			[]string{"---"},
			[]string{"Income vs " + m.Prev().Label(), colorDelta(c.Income, true)},
			[]string{"Expense vs " + m.Prev().Label(), colorDelta(c.Expense, false)},
			[]string{"Net vs " + m.Prev().Label(), colorDelta(c.Net, true)},
			[]string{"Count vs " + m.Prev().Label(), cli.FormatCountDelta(c.Count.Delta)},
		)
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	if len(r.Top) > 0 {
		fmt.Println()
		top := make([][]string, 0, len(r.Top))
		for _, c := range r.Top {
			top = append(top, []string{
				c.Category,
				cli.FormatMoney(c.Spent),
				fmt.Sprintf("%d%%", c.SharePercent),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Top Categories",
			Headers: []string{"Category", "Spent", "Share"},
			Rows:    top,
		}))
	}

	printWeeks(r.Weeks)

	if r.Insight != "" {
		fmt.Println()
		fmt.Println("  " + cli.RenderMuted("Insight: ") + r.Insight)
	}

	for _, w := range r.Warnings {
		fmt.Fprintf(os.Stderr, "\n  %s\n", cli.RenderWarning(w))
	}
	return nil
}

// printWeeks draws the weekly expense chart as horizontal bars.
func printWeeks(weeks []model.WeekBucket) {
	if len(weeks) == 0 {
		return
	}
	maxVal := 0.0
	labelWidth := 0
	for _, w := range weeks {
		if v := w.Expense.InexactFloat64(); v > maxVal {
			maxVal = v
		}
		if len([]rune(w.Label)) > labelWidth {
			labelWidth = len([]rune(w.Label))
		}
	}

	fmt.Println()
	fmt.Println("  Weekly Spend")
	for _, w := range weeks {
		fmt.Println(cli.RenderHorizontalBar(w.Label, labelWidth, w.Expense.InexactFloat64(), maxVal, 30, cli.FormatMoney(w.Expense)))
	}
}

// colorDelta renders a month-over-month change, green when it moved in the
// good direction for the metric and red otherwise.
func colorDelta(d model.MetricDelta, upIsGood bool) string {
	text := cli.FormatDelta(d.Delta, d.Percent)
	switch pipeline.DeltaTrend(d, upIsGood) {
	case pipeline.TrendGood:
		return cli.RenderIncome(text)
	case pipeline.TrendBad:
		return cli.RenderExpense(text)
	default:
		return cli.RenderMuted(text)
	}
}
