package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"fintrack/internal/api"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a transaction",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

var deleteYes bool

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip confirmation")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if !deleteYes {
		if !isatty.IsTerminal(os.Stdin.Fd()) {
			return errors.New("refusing to delete without --yes when not running interactively")
		}
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete transaction %d?", id)).
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("  Cancelled.")
			return nil
		}
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.client.Delete(cmd.Context(), id); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return fmt.Errorf("transaction %d not found", id)
		}
		return err
	}
	fmt.Println("  Transaction deleted")
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid transaction id %q", s)
	}
	return id, nil
}
