package cmd

import (
	"fmt"

	"fintrack/internal/api"
	"fintrack/internal/cli"
	"fintrack/internal/model"
	"fintrack/internal/pipeline"
	"fintrack/internal/prefs"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Filtered, sortable transaction table",
	RunE:    runList,
}

var (
	listQ        string
	listFrom     string
	listTo       string
	listCategory string
	listWeek     int
	listSort     string
	listAsc      bool
	listDesc     bool
	listClear    bool
)

func init() {
	listCmd.Flags().StringVar(&listQ, "q", "", "Search merchant, category, and notes")
	listCmd.Flags().StringVar(&listFrom, "from", "", "First date (YYYY-MM-DD, inclusive)")
	listCmd.Flags().StringVar(&listTo, "to", "", "Last date (YYYY-MM-DD, inclusive)")
	listCmd.Flags().StringVar(&listCategory, "category", "", "Exact category (case-insensitive)")
	listCmd.Flags().IntVar(&listWeek, "week", 0, "Narrow to week N of the month (1-5)")
	listCmd.Flags().StringVar(&listSort, "sort", "date", "Sort by date, merchant, amount, or category")
	listCmd.Flags().BoolVar(&listAsc, "asc", false, "Sort ascending")
	listCmd.Flags().BoolVar(&listDesc, "desc", false, "Sort descending")
	listCmd.Flags().BoolVar(&listClear, "clear", false, "Clear saved filters before applying flags")
	listCmd.MarkFlagsMutuallyExclusive("asc", "desc")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	sortState, err := listSortState()
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	f, m, err := resolveListFilters(cmd, s)
	if err != nil {
		return err
	}

	query := api.ListQuery{Q: f.Q, From: f.From, To: f.To, Category: f.Category}
	if listWeek > 0 {
		from, to, err := pipeline.WeekRange(m, listWeek)
		if err != nil {
			return err
		}
		query.From, query.To = from, to
	}

	progress("Loading transactions...")
	txs, err := s.client.ListTransactions(cmd.Context(), query)
	if err != nil {
		return err
	}
	txs = pipeline.SortTransactions(txs, sortState)

	fmt.Println()
	fmt.Println(cli.RenderTitle(listTitle(m, query)))
	fmt.Println()

	if len(txs) == 0 {
		fmt.Println("  No transactions.")
		return nil
	}

	fmt.Print(cli.RenderTable(transactionTable(txs, sortState)))

	t := pipeline.ShownTotals(txs)
	fmt.Printf("\n  Totals (shown rows)  %s  %s  %s  %s\n",
		cli.RenderExpense("Expense: "+cli.FormatMoney(t.Expense)),
		cli.RenderIncome("Income: "+cli.FormatMoney(t.Income)),
		cli.RenderNet("Net: "+cli.FormatSignedMoney(t.Net), t.Net.IsNegative()),
		cli.RenderMuted(fmt.Sprintf("%d rows", len(txs))),
	)
	return nil
}

func listSortState() (pipeline.SortState, error) {
	key, err := pipeline.ParseSortKey(listSort)
	if err != nil {
		return pipeline.SortState{}, err
	}
	st := pipeline.SortState{Key: key, Desc: key == pipeline.SortDate}
	switch {
	case listAsc:
		st.Desc = false
	case listDesc:
		st.Desc = true
	}
	return st, nil
}

// resolveListFilters merges saved filters with the flags that were set and
// persists the result. Switching month resets the date range first so
// explicit --from/--to still win.
func resolveListFilters(cmd *cobra.Command, s *session) (prefs.Filters, model.Month, error) {
	f := s.filters()
	if listClear {
		f = f.Cleared()
	}
	m, err := s.month(f)
	if err != nil {
		return f, m, err
	}
	if f.Month != m.String() {
		f = f.WithMonth(m)
	}

	flags := cmd.Flags()
	if flags.Changed("q") {
		f.Q = listQ
	}
	if flags.Changed("from") {
		f.From = listFrom
	}
	if flags.Changed("to") {
		f.To = listTo
	}
	if flags.Changed("category") {
		f.Category = listCategory
	}
	s.saveFilters(f)
	return f, m, nil
}

func listTitle(m model.Month, q api.ListQuery) string {
	title := "TRANSACTIONS  " + m.Label()
	if q.From != "" || q.To != "" {
		title += fmt.Sprintf("  %s..%s", q.From, q.To)
	}
	return title
}

func transactionTable(txs []model.Transaction, st pipeline.SortState) cli.Table {
	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		amount := cli.FormatMoney(tx.Amount.Abs())
		if pipeline.IsIncome(tx) {
			amount = cli.RenderIncome(amount)
		} else {
			amount = cli.RenderExpense(amount)
		}
		rows = append(rows, []string{
			cli.FormatID(tx.ID),
			tx.Date,
			cli.Truncate(tx.Merchant, 28),
			amount,
			cli.Truncate(tx.Category, 16),
			cli.Truncate(tx.Notes, 30),
		})
	}
	return cli.Table{
		Headers: []string{
			"ID",
			"Date" + st.Arrow(pipeline.SortDate),
			"Merchant" + st.Arrow(pipeline.SortMerchant),
			"Amount" + st.Arrow(pipeline.SortAmount),
			"Category" + st.Arrow(pipeline.SortCategory),
			"Notes",
		},
		Rows:      rows,
		LeftAlign: []int{1, 2, 4, 5},
	}
}
