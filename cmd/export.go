package cmd

import (
	"fmt"

	"fintrack/internal/api"
	"fintrack/internal/export"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the filtered transaction list as CSV",
	RunE:  runExport,
}

var exportDir string

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "output", "o", ".", "Directory to write the CSV into")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
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
	f = s.rememberMonth(f, m)

	progress("Loading transactions...")
	txs, err := s.client.ListTransactions(cmd.Context(), api.ListQuery{
		Q: f.Q, From: f.From, To: f.To, Category: f.Category,
	})
	if err != nil {
		return err
	}

	path, err := export.WriteFile(exportDir, m, txs)
	if err != nil {
		return err
	}
	fmt.Printf("  Exported %d transactions to %s\n", len(txs), path)
	return nil
}
