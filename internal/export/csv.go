// Package export renders transactions as CSV.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fintrack/internal/model"
)

// Header is the column order of every export.
var Header = []string{"id", "date", "merchant", "amount", "category", "notes"}

// Filename returns transactions_<YYYYMM>.csv, or transactions_all.csv when
// no month is active.
func Filename(m model.Month) string {
	if c := m.Compact(); c != "" {
		return "transactions_" + c + ".csv"
	}
	return "transactions_all.csv"
}

// CSV renders txs with a header row. Lines are joined with "\n" and the
// output has no trailing newline.
func CSV(txs []model.Transaction) string {
	lines := make([]string, 0, len(txs)+1)
	lines = append(lines, strings.Join(Header, ","))
	for _, tx := range txs {
		id := ""
		if tx.ID != nil {
			id = strconv.FormatInt(*tx.ID, 10)
		}
		row := []string{id, tx.Date, tx.Merchant, tx.Amount.String(), tx.Category, tx.Notes}
		for i, f := range row {
			row[i] = quoteField(f)
		}
		lines = append(lines, strings.Join(row, ","))
	}
	return strings.Join(lines, "\n")
}

// quoteField doubles embedded quotes and wraps the field in quotes when it
// holds a comma, a quote, or a newline.
func quoteField(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WriteFile writes the CSV for txs into dir and returns the file path.
func WriteFile(dir string, m model.Month, txs []model.Transaction) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}
	path := filepath.Join(dir, Filename(m))
	if err := os.WriteFile(path, []byte(CSV(txs)), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
