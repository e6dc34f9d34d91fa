package cmd

import (
	"fmt"
	"os"
	"time"

	"fintrack/internal/budget"
	"fintrack/internal/cli"
	"fintrack/internal/logger"
	"fintrack/internal/model"
	"fintrack/internal/report"

	"github.com/spf13/cobra"
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Manage monthly category budgets",
	RunE:  runBudgetAlerts,
}

var budgetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List budgets",
	Args:  cobra.NoArgs,
	RunE:  runBudgetList,
}

var budgetSetCmd = &cobra.Command{
	Use:   "set <category> <limit>",
	Short: "Add or replace a category budget",
	Args:  cobra.ExactArgs(2),
	RunE:  runBudgetSet,
}

var budgetRmCmd = &cobra.Command{
	Use:     "rm <category>",
	Aliases: []string{"remove"},
	Short:   "Remove a category budget",
	Args:    cobra.ExactArgs(1),
	RunE:    runBudgetRm,
}

var budgetAlertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Spend against each budget for the month",
	Args:  cobra.NoArgs,
	RunE:  runBudgetAlerts,
}

func init() {
	budgetCmd.AddCommand(budgetListCmd, budgetSetCmd, budgetRmCmd, budgetAlertsCmd)
	rootCmd.AddCommand(budgetCmd)
}

// book loads the budget book, treating unreadable state as empty.
func (s *session) book() *budget.Book {
	b, err := budget.Load(s.state)
	if err != nil {
		s.log.Debug().Err(err).Msg("loading budgets")
	}
	return b
}

func runBudgetList(_ *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	budgets := s.book().List()
	if len(budgets) == 0 {
		fmt.Println("\n  No budgets. Add one with `fintrack budget set <category> <limit>`.")
		return nil
	}

	rows := make([][]string, 0, len(budgets))
	for _, b := range budgets {
		rows = append(rows, []string{b.Category, cli.FormatMoney(b.Limit)})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Budgets",
		Headers: []string{"Category", "Monthly Limit"},
		Rows:    rows,
	}))
	return nil
}

func runBudgetSet(_ *cobra.Command, args []string) error {
	limit, err := budget.ParseLimit(args[1])
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	b := s.book()
	if err := b.Set(args[0], limit); err != nil {
		return err
	}
	if err := b.Save(s.state); err != nil {
		return fmt.Errorf("saving budgets: %w", err)
	}
	fmt.Printf("  Budget for %s set to %s\n", args[0], cli.FormatMoney(limit))
	return nil
}

func runBudgetRm(_ *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	b := s.book()
	if !b.Remove(args[0]) {
		return fmt.Errorf("no budget for %q", args[0])
	}
	if err := b.Save(s.state); err != nil {
		return fmt.Errorf("saving budgets: %w", err)
	}
	fmt.Printf("  Budget for %s removed\n", args[0])
	return nil
}

func runBudgetAlerts(cmd *cobra.Command, _ []string) error {
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

	budgets := s.book().List()
	fmt.Println()
	fmt.Println(cli.RenderTitle("BUDGETS  " + m.Label()))
	fmt.Println()

	if len(budgets) == 0 {
		fmt.Println("  No budgets. Add one with `fintrack budget set <category> <limit>`.")
		return nil
	}

	progress("Loading %s...", m)
	alerts, warning := report.Budgets(logger.WithContext(cmd.Context(), logger.Component(s.log, "report")), s.client, budgets, m, time.Now())

	for _, a := range alerts {
		sev := cli.SeverityStyle(a.Severity)
		fmt.Printf("  %s  %s\n", a.Category,
			sev.Render(fmt.Sprintf("%s / %s (%d%%)", cli.FormatMoney(a.Spent), cli.FormatMoney(a.Limit), a.Percent)))
		fmt.Printf("  %s\n", cli.RenderProgressBar(a.Percent, a.Severity, 40))
		pace := "Pacing: " + cli.FormatPace(a)
		switch a.Pace {
		case model.PaceOver:
			pace = cli.RenderExpense(pace)
		case model.PaceUnder:
			pace = cli.RenderIncome(pace)
		default:
			pace = cli.RenderMuted(pace)
		}
		fmt.Printf("  %s\n\n", pace)
	}

	if warning != "" {
		fmt.Fprintf(os.Stderr, "  %s\n", cli.RenderWarning(warning))
	}
	return nil
}
