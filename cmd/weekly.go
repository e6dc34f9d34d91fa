package cmd

import (
	"fmt"

	"fintrack/internal/cli"
	"fintrack/internal/pipeline"

	"github.com/spf13/cobra"
)

var weeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Expenses per week of the month",
	RunE:  runWeekly,
}

func init() {
	rootCmd.AddCommand(weeklyCmd)
}

func runWeekly(cmd *cobra.Command, _ []string) error {
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

	progress("Loading %s...", m)
	txs, err := s.client.ListMonth(cmd.Context(), m)
	if err != nil {
		return err
	}
	weeks := pipeline.WeeklyBuckets(txs, m)

	fmt.Println()
	fmt.Println(cli.RenderTitle("WEEKLY SPEND  " + m.Label()))
	fmt.Println()

	rows := make([][]string, 0, len(weeks))
	values := make([]float64, 0, len(weeks))
	for i, w := range weeks {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			w.Start,
			w.End,
			cli.FormatMoney(w.Expense),
		})
		values = append(values, w.Expense.InexactFloat64())
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:   []string{"Week", "From", "To", "Expense"},
		Rows:      rows,
		LeftAlign: []int{1, 2},
	}))

	printWeeks(weeks)
	fmt.Printf("\n  Trend  %s\n", cli.RenderSparkline(values))
	fmt.Println(cli.RenderMuted("\n  Use `fintrack list --week N` to see a week's transactions."))
	return nil
}
