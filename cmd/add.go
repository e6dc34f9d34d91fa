package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"fintrack/internal/cli"
	"fintrack/internal/model"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a transaction (interactive when fields are missing)",
	RunE:  runAdd,
}

var (
	addDate     string
	addMerchant string
	addAmount   string
	addIncome   bool
	addCategory string
	addNotes    string
)

func init() {
	addCmd.Flags().StringVar(&addDate, "date", "", "Date (YYYY-MM-DD, default today)")
	addCmd.Flags().StringVar(&addMerchant, "merchant", "", "Merchant or payee")
	addCmd.Flags().StringVar(&addAmount, "amount", "", "Amount (sign is ignored)")
	addCmd.Flags().BoolVar(&addIncome, "income", false, "Record as income instead of expense")
	addCmd.Flags().StringVar(&addCategory, "category", "", "Category (default Other)")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "Free-form notes")
	rootCmd.AddCommand(addCmd)
}

// addForm holds the add-transaction inputs, from flags or the form.
type addForm struct {
	date     string
	merchant string
	amount   string
	kind     string
	category string
	notes    string
}

func runAdd(cmd *cobra.Command, _ []string) error {
	in := addForm{
		date:     addDate,
		merchant: addMerchant,
		amount:   addAmount,
		kind:     model.Expense.String(),
		category: addCategory,
		notes:    addNotes,
	}
	if addIncome {
		in.kind = model.Income.String()
	}

	if in.amount == "" {
		if !isatty.IsTerminal(os.Stdin.Fd()) {
			return errors.New("--amount is required when not running interactively")
		}
		if err := runAddForm(&in); err != nil {
			return err
		}
	}

	tx, err := in.transaction(time.Now())
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	created, err := s.client.Create(cmd.Context(), tx)
	if err != nil {
		return fmt.Errorf("adding transaction: %w", err)
	}
	fmt.Printf("  Transaction added (id %s): %s %s %s\n",
		cli.FormatID(created.ID), tx.Date, tx.Merchant, cli.FormatMoney(tx.Amount.Abs()))
	return nil
}

// transaction validates the inputs and normalizes them into an entry.
func (f addForm) transaction(today time.Time) (model.Transaction, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(f.amount))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid amount %q", f.amount)
	}
	date := strings.TrimSpace(f.date)
	if date != "" {
		if _, err := time.Parse(model.DateLayout, date); err != nil {
			return model.Transaction{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", f.date)
		}
	}
	dir := model.Expense
	if f.kind == model.Income.String() {
		dir = model.Income
	}
	return model.NewEntry(date, strings.TrimSpace(f.merchant), amount, dir,
		strings.TrimSpace(f.category), f.notes, today), nil
}

func runAddForm(in *addForm) error {
	categories := make([]huh.Option[string], 0, len(model.Categories))
	for _, c := range model.Categories {
		categories = append(categories, huh.NewOption(c, c))
	}
	if in.category == "" {
		in.category = model.DefaultCategory
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Date").
				Description("YYYY-MM-DD, blank for today").
				Value(&in.date).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					_, err := time.Parse(model.DateLayout, strings.TrimSpace(s))
					return err
				}),
			huh.NewInput().
				Title("Merchant").
				Value(&in.merchant),
			huh.NewInput().
				Title("Amount").
				Value(&in.amount).
				Validate(func(s string) error {
					_, err := decimal.NewFromString(strings.TrimSpace(s))
					return err
				}),
			huh.NewSelect[string]().
				Title("Type").
				Options(
					huh.NewOption("Expense", model.Expense.String()),
					huh.NewOption("Income", model.Income.String()),
				).
				Value(&in.kind),
			huh.NewSelect[string]().
				Title("Category").
				Options(categories...).
				Value(&in.category),
			huh.NewInput().
				Title("Notes").
				Value(&in.notes),
		),
	)
	return form.Run()
}
