// Package pipeline classifies transactions and derives summaries, comparisons,
// weekly buckets, and table views from them.
package pipeline

import (
	"math"
	"sort"
	"strings"

	"fintrack/internal/model"

	"github.com/shopspring/decimal"
)

// UncategorizedLabel is the display key for expenses with no category.
const UncategorizedLabel = "Uncategorized"

// percentEpsilon is the magnitude below which a previous value counts as zero.
const percentEpsilon = 1e-9

// Aggregate computes income/expense totals from a transaction list.
func Aggregate(txs []model.Transaction) model.Summary {
	s := model.Summary{
		Count:      len(txs),
		ByCategory: make(map[string]decimal.Decimal),
	}

	for _, tx := range txs {
		amt := tx.Amount.Abs()
		if IsIncome(tx) {
			s.Income = s.Income.Add(amt)
			continue
		}
		s.Expense = s.Expense.Add(amt)
		key := CategoryLabel(tx.Category)
		s.ByCategory[key] = s.ByCategory[key].Add(amt)
	}

	s.Net = s.Income.Sub(s.Expense)
	return s
}

// CategoryLabel returns the trimmed category, or "Uncategorized" when empty.
func CategoryLabel(category string) string {
	if c := strings.TrimSpace(category); c != "" {
		return c
	}
	return UncategorizedLabel
}

// Coalesce merges a backend summary over the locally computed one. Each
// field present in the payload wins; absent fields fall back to local.
func Coalesce(p *model.SummaryPayload, local model.Summary) model.Summary {
	if p == nil {
		return local
	}

	out := model.Summary{}

	switch {
	case p.ByCategory != nil:
		out.ByCategory = p.ByCategory
	case p.CategoryTotals != nil:
		out.ByCategory = p.CategoryTotals
	default:
		out.ByCategory = local.ByCategory
	}

	out.Income = firstDecimal(local.Income, p.TotalIncome, p.Income)
	out.Expense = firstDecimal(local.Expense, p.TotalExpense, p.Expense)
	out.Net = firstDecimal(out.Income.Sub(out.Expense), p.Net)

	out.Count = local.Count
	if p.Count != nil {
		out.Count = *p.Count
	}
	return out
}

func firstDecimal(fallback decimal.Decimal, candidates ...*decimal.Decimal) decimal.Decimal {
	for _, c := range candidates {
		if c != nil {
			return *c
		}
	}
	return fallback
}

// Compare computes month-over-month deltas for every summary metric.
func Compare(cur, prev model.Summary) model.Comparison {
	return model.Comparison{
		Income:  Delta(cur.Income, prev.Income),
		Expense: Delta(cur.Expense, prev.Expense),
		Net:     Delta(cur.Net, prev.Net),
		Count:   Delta(decimal.NewFromInt(int64(cur.Count)), decimal.NewFromInt(int64(prev.Count))),
	}
}

// Delta compares a single metric.
func Delta(cur, prev decimal.Decimal) model.MetricDelta {
	return model.MetricDelta{
		Current:  cur,
		Previous: prev,
		Delta:    cur.Sub(prev),
		Percent:  PercentChange(cur.InexactFloat64(), prev.InexactFloat64()),
	}
}

// Trend classifies a month-over-month change for display.
type Trend int

const (
	TrendFlat Trend = iota
	TrendGood
	TrendBad
)

// flatThreshold is the change below which a delta counts as flat.
var flatThreshold = decimal.RequireFromString("0.005")

// DeltaTrend grades d. For metrics where more is worse, such as expense,
// pass upIsGood false.
func DeltaTrend(d model.MetricDelta, upIsGood bool) Trend {
	switch {
	case d.Delta.Abs().LessThan(flatThreshold):
		return TrendFlat
	case d.Delta.IsPositive() == upIsGood:
		return TrendGood
	default:
		return TrendBad
	}
}

// PercentChange returns (cur-prev)/prev*100, or nil when prev is zero or
// not a finite number.
func PercentChange(cur, prev float64) *float64 {
	if math.IsNaN(prev) || math.IsInf(prev, 0) || math.Abs(prev) < percentEpsilon {
		return nil
	}
	pct := (cur - prev) / prev * 100
	return &pct
}

// TopCategories returns the n largest expense categories with their share
// of total expense. Share is 0 when there is no expense.
func TopCategories(s model.Summary, n int) []model.CategoryShare {
	shares := make([]model.CategoryShare, 0, len(s.ByCategory))
	for name, spent := range s.ByCategory {
		share := model.CategoryShare{Category: name, Spent: spent}
		if s.Expense.IsPositive() {
			share.SharePercent = int(spent.Div(s.Expense).Mul(decimal.NewFromInt(100)).Round(0).IntPart())
		}
		shares = append(shares, share)
	}

	sort.Slice(shares, func(i, j int) bool {
		if c := shares[i].Spent.Cmp(shares[j].Spent); c != 0 {
			return c > 0
		}
		return shares[i].Category < shares[j].Category
	})

	if n >= 0 && len(shares) > n {
		shares = shares[:n]
	}
	return shares
}

// ShownTotals sums the rows currently displayed.
func ShownTotals(txs []model.Transaction) model.Totals {
	s := Aggregate(txs)
	return model.Totals{Income: s.Income, Expense: s.Expense, Net: s.Net}
}
