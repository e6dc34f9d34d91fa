package budget

import (
	"sort"
	"time"

	"fintrack/internal/model"
	"fintrack/internal/pipeline"

	"github.com/shopspring/decimal"
)

const (
	warningRatio   = 0.8
	criticalRatio  = 1.0
	paceTolerance  = 0.01
	maxPercentShow = 100
)

var (
	hundred   = decimal.NewFromInt(100)
	tolerance = decimal.NewFromFloat(paceTolerance)
)

// Evaluate compares month-to-date expense against every budget and returns
// one alert per budget, highest spend ratio first. now decides how much of
// the month has elapsed for pacing.
func Evaluate(budgets []model.Budget, txs []model.Transaction, m model.Month, now time.Time) []model.Alert {
	spent := SpentByCategory(txs)
	elapsed, total := DaysElapsed(m, now)

	alerts := make([]model.Alert, 0, len(budgets))
	for _, b := range budgets {
		if !b.Limit.IsPositive() {
			continue
		}
		s := spent[Normalize(b.Category)]
		ratio := s.Div(b.Limit)

		a := model.Alert{
			Category:    b.Category,
			Limit:       b.Limit,
			Spent:       s,
			Ratio:       ratio.InexactFloat64(),
			Percent:     int(decimal.Min(ratio.Mul(hundred).Round(0), decimal.NewFromInt(maxPercentShow)).IntPart()),
			DaysElapsed: elapsed,
			TotalDays:   total,
		}
		a.Severity = SeverityFor(a.Ratio)

		if total > 0 {
			a.Expected = b.Limit.Mul(decimal.NewFromInt(int64(elapsed))).Div(decimal.NewFromInt(int64(total)))
		}
		a.PaceDelta = s.Sub(a.Expected)
		a.Pace = PaceFor(a.PaceDelta)

		alerts = append(alerts, a)
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Ratio != alerts[j].Ratio {
			return alerts[i].Ratio > alerts[j].Ratio
		}
		return alerts[i].Category < alerts[j].Category
	})
	return alerts
}

// SpentByCategory sums absolute expense amounts by normalized category.
func SpentByCategory(txs []model.Transaction) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if pipeline.IsIncome(tx) {
			continue
		}
		key := Normalize(tx.Category)
		out[key] = out[key].Add(tx.Amount.Abs())
	}
	return out
}

// SeverityFor grades a spend ratio.
func SeverityFor(ratio float64) model.Severity {
	switch {
	case ratio >= criticalRatio:
		return model.SeverityCritical
	case ratio >= warningRatio:
		return model.SeverityWarning
	default:
		return model.SeverityNormal
	}
}

// PaceFor classifies the difference between actual and expected spend.
func PaceFor(delta decimal.Decimal) model.Pace {
	switch {
	case delta.GreaterThan(tolerance):
		return model.PaceOver
	case delta.LessThan(tolerance.Neg()):
		return model.PaceUnder
	default:
		return model.PaceOn
	}
}

// DaysElapsed returns how many days of m have passed as of now, and the
// month length. Past months count in full, future months as zero.
func DaysElapsed(m model.Month, now time.Time) (elapsed, total int) {
	total = m.Days()
	switch m.Compare(model.MonthOf(now)) {
	case -1:
		return total, total
	case 1:
		return 0, total
	default:
		return min(now.Day(), total), total
	}
}
