package cmd

import (
	"errors"
	"fmt"
	"time"

	"fintrack/internal/api"
	"fintrack/internal/cli"

	"github.com/spf13/cobra"
)

var duplicateCmd = &cobra.Command{
	Use:     "duplicate <id>",
	Aliases: []string{"dup"},
	Short:   "Repost a transaction dated today",
	Args:    cobra.ExactArgs(1),
	RunE:    runDuplicate,
}

func init() {
	rootCmd.AddCommand(duplicateCmd)
}

func runDuplicate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	orig, err := s.client.Get(cmd.Context(), id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return fmt.Errorf("transaction %d not found", id)
		}
		return err
	}

	created, err := s.client.Create(cmd.Context(), orig.Duplicate(time.Now()))
	if err != nil {
		return fmt.Errorf("duplicating transaction: %w", err)
	}
	fmt.Printf("  Transaction duplicated (id %s): %s %s %s\n",
		cli.FormatID(created.ID), created.Date, created.Merchant, cli.FormatMoney(created.Amount.Abs()))
	return nil
}
