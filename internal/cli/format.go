// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"fintrack/internal/model"

	"github.com/shopspring/decimal"
)

// FormatMoney formats an amount as USD with thousands separators,
// e.g. 1234.5 -> "$1,234.50", -3 -> "-$3.00".
func FormatMoney(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)

	whole, frac, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err == nil {
		whole = FormatNumber(n)
	}

	out := "$" + whole + "." + frac
	if neg {
		return "-" + out
	}
	return out
}

// FormatSignedMoney formats a delta with an explicit sign, e.g. "+$12.00".
func FormatSignedMoney(d decimal.Decimal) string {
	if d.IsNegative() {
		return FormatMoney(d)
	}
	return "+" + FormatMoney(d)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercentChange formats a month-over-month change. A nil change
// (no prior data) renders as "n/a".
func FormatPercentChange(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f%%", *p)
}

// FormatDelta formats current-previous with sign and, when defined, the
// percent change: "+$20.00 (+12.5%)".
func FormatDelta(delta decimal.Decimal, pct *float64) string {
	if pct == nil {
		return FormatSignedMoney(delta)
	}
	return fmt.Sprintf("%s (%s)", FormatSignedMoney(delta), FormatPercentChange(pct))
}

// FormatCountDelta formats an integer delta such as "+3" or "-1".
func FormatCountDelta(delta decimal.Decimal) string {
	return fmt.Sprintf("%+d", delta.IntPart())
}

// FormatID renders an optional id; "-" when unset.
func FormatID(id *int64) string {
	if id == nil {
		return "-"
	}
	return strconv.FormatInt(*id, 10)
}

// Truncate shortens s to max runes, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}

// FormatPace describes spend against the pro-rated expectation, e.g.
// "should be ≤ $40.00; you are $12.50 over".
func FormatPace(a model.Alert) string {
	var where string
	switch {
	case a.PaceDelta.IsPositive():
		where = FormatMoney(a.PaceDelta) + " over"
	case a.PaceDelta.IsNegative():
		where = FormatMoney(a.PaceDelta.Abs()) + " under"
	default:
		where = "on track"
	}
	return fmt.Sprintf("should be ≤ %s; you are %s", FormatMoney(a.Expected), where)
}
