package pipeline

import (
	"fmt"

	"fintrack/internal/model"
)

const weekLength = 7

// WeekRanges partitions a month into consecutive 7-day windows starting on
// day 1. The final window holds whatever days remain after day 28.
func WeekRanges(m model.Month) [][2]int {
	if m.IsZero() {
		return nil
	}
	total := m.Days()
	var ranges [][2]int
	for start := 1; start <= total; start += weekLength {
		end := min(start+weekLength-1, total)
		ranges = append(ranges, [2]int{start, end})
	}
	return ranges
}

// WeeklyBuckets sums expense amounts into the month's week windows.
// Records outside the month or with unparsable dates are skipped.
func WeeklyBuckets(txs []model.Transaction, m model.Month) []model.WeekBucket {
	ranges := WeekRanges(m)
	buckets := make([]model.WeekBucket, len(ranges))
	for i, r := range ranges {
		buckets[i] = model.WeekBucket{
			Label: fmt.Sprintf("W%d (%d–%d)", i+1, r[0], r[1]),
			Start: m.Day(r[0]),
			End:   m.Day(r[1]),
		}
	}

	for _, tx := range txs {
		d, ok := tx.ParsedDate()
		if !ok || !m.Contains(d) {
			continue
		}
		if IsIncome(tx) {
			continue
		}
		idx := (d.Day() - 1) / weekLength
		if idx < 0 || idx >= len(buckets) {
			continue
		}
		buckets[idx].Expense = buckets[idx].Expense.Add(tx.Amount.Abs())
	}
	return buckets
}

// WeekRange returns the ISO start/end of the 1-based week n of m.
func WeekRange(m model.Month, n int) (from, to string, err error) {
	ranges := WeekRanges(m)
	if n < 1 || n > len(ranges) {
		return "", "", fmt.Errorf("week %d out of range (month %s has %d weeks)", n, m, len(ranges))
	}
	r := ranges[n-1]
	return m.Day(r[0]), m.Day(r[1]), nil
}
