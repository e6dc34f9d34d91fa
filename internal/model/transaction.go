// Package model defines domain types for fintrack transactions, summaries, and budgets.
package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO-8601 calendar date format used on the wire.
const DateLayout = "2006-01-02"

// Direction is the cash-flow side a transaction falls on.
type Direction int

const (
	Expense Direction = iota
	Income
)

func (d Direction) String() string {
	if d == Income {
		return "income"
	}
	return "expense"
}

// Transaction is a single ledger entry as served by the /api/tx backend.
// Date is kept as the raw string so malformed values survive until a
// consumer decides to skip them.
type Transaction struct {
	ID       *int64
	Date     string
	Merchant string
	Amount   decimal.Decimal
	Category string
	Notes    string
	Kind     string // first non-empty of type/txType/kind
}

// ParsedDate returns the calendar date, or false if Date is not YYYY-MM-DD.
// Trailing time components ("2024-03-05T10:00:00") are ignored.
func (t Transaction) ParsedDate() (time.Time, bool) {
	s := strings.TrimSpace(t.Date)
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// Duplicate returns a copy without an id, dated on the given day.
func (t Transaction) Duplicate(today time.Time) Transaction {
	dup := t
	dup.ID = nil
	dup.Date = today.Format(DateLayout)
	return dup
}

// NewEntry builds a transaction the way the add form does: income amounts
// are stored negative, expenses positive, empty date means today and empty
// category means "Other".
func NewEntry(date, merchant string, amount decimal.Decimal, dir Direction, category, notes string, today time.Time) Transaction {
	if strings.TrimSpace(date) == "" {
		date = today.Format(DateLayout)
	}
	if strings.TrimSpace(category) == "" {
		category = DefaultCategory
	}
	amount = amount.Abs()
	if dir == Income {
		amount = amount.Neg()
	}
	return Transaction{
		Date:     date,
		Merchant: merchant,
		Amount:   amount,
		Category: category,
		Notes:    notes,
	}
}

// DefaultCategory is assigned to new entries that name no category.
const DefaultCategory = "Other"

// Categories is the picker list offered by the add form and filters.
var Categories = []string{
	"Groceries", "Dining", "Transport", "Rent", "Utilities", "Entertainment",
	"Shopping", "Health", "Travel", "Salary", "Income", "Other",
}
