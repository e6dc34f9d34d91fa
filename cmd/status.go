package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/api"
	"fintrack/internal/cli"
	"fintrack/internal/model"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check connectivity to the transaction backend",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// probe is one endpoint check.
type probe struct {
	name string
	run  func(ctx context.Context) (string, error)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	m := model.MonthOf(time.Now())
	probes := []probe{
		{"GET /tx?month", func(ctx context.Context) (string, error) {
			txs, err := s.client.ListMonth(ctx, m)
			return fmt.Sprintf("%d transactions", len(txs)), err
		}},
		{"GET /tx/summary", func(ctx context.Context) (string, error) {
			p, err := s.client.Summary(ctx, m)
			if err != nil || p == nil {
				return "", err
			}
			return fmt.Sprintf("%d categories", len(p.ByCategory)+len(p.CategoryTotals)), nil
		}},
		{"GET /tx/insights", func(ctx context.Context) (string, error) {
			text, err := s.client.Insights(ctx, m)
			return fmt.Sprintf("%d chars", len(text)), err
		}},
	}

	progress("Checking %s...", s.client.BaseURL())

	rows := make([][]string, 0, len(probes))
	failed := 0
	for _, p := range probes {
		start := time.Now()
		detail, err := p.run(cmd.Context())
		elapsed := time.Since(start).Round(time.Millisecond)

		status := cli.RenderIncome("ok")
		if err != nil {
			failed++
			status = cli.RenderExpense("failed")
			detail = describeAPIError(err)
		}
		rows = append(rows, []string{p.name, status, elapsed.String(), detail})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("BACKEND STATUS"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:     fmt.Sprintf("%s · %s", s.client.BaseURL(), m.Label()),
		Headers:   []string{"Endpoint", "Status", "Latency", "Detail"},
		Rows:      rows,
		LeftAlign: []int{1, 3},
	}))

	if failed == len(probes) {
		return errors.New("backend unreachable")
	}
	return nil
}

func describeAPIError(err error) string {
	switch {
	case errors.Is(err, api.ErrNotFound):
		return "endpoint not found"
	case errors.Is(err, api.ErrServer):
		return "server error"
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out"
	default:
		return cli.Truncate(err.Error(), 50)
	}
}
