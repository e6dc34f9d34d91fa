package model

import "github.com/shopspring/decimal"

// Summary holds the monthly income/expense aggregate.
type Summary struct {
	Income     decimal.Decimal            `json:"income"`
	Expense    decimal.Decimal            `json:"expense"`
	Net        decimal.Decimal            `json:"net"`
	Count      int                        `json:"count"`
	ByCategory map[string]decimal.Decimal `json:"perCategoryExpense"`
}

// SummaryPayload is a summary as reported by the backend. A nil field was
// absent from the payload; aliases are kept separate so precedence between
// them stays explicit.
type SummaryPayload struct {
	Month          string
	ByCategory     map[string]decimal.Decimal
	CategoryTotals map[string]decimal.Decimal
	TotalIncome    *decimal.Decimal
	Income         *decimal.Decimal
	TotalExpense   *decimal.Decimal
	Expense        *decimal.Decimal
	Net            *decimal.Decimal
	Count          *int
}

// MetricDelta compares one metric across two periods.
type MetricDelta struct {
	Current  decimal.Decimal `json:"current"`
	Previous decimal.Decimal `json:"previous"`
	Delta    decimal.Decimal `json:"delta"`
	Percent  *float64        `json:"percent"` // nil when previous is zero
}

// Comparison holds month-over-month deltas for the summary metrics.
type Comparison struct {
	Income  MetricDelta `json:"income"`
	Expense MetricDelta `json:"expense"`
	Net     MetricDelta `json:"net"`
	Count   MetricDelta `json:"count"`
}

// CategoryShare is one row of the top-categories breakdown.
type CategoryShare struct {
	Category     string
	Spent        decimal.Decimal
	SharePercent int
}

// WeekBucket holds expense totals for one 7-day window of a month.
type WeekBucket struct {
	Label   string          `json:"label"`
	Start   string          `json:"start"`
	End     string          `json:"end"`
	Expense decimal.Decimal `json:"expense"`
}

// Totals holds the live income/expense/net of the rows currently shown.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Net     decimal.Decimal
}
