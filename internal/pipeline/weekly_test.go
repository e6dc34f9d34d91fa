package pipeline

import (
	"testing"

	"fintrack/internal/model"
)

func TestWeeklyBucketRanges(t *testing.T) {
	tests := []struct {
		month  string
		starts []string
		ends   []string
	}{
		{"2025-09", []string{"2025-09-01", "2025-09-08", "2025-09-15", "2025-09-22", "2025-09-29"},
			[]string{"2025-09-07", "2025-09-14", "2025-09-21", "2025-09-28", "2025-09-30"}},
		{"2023-02", []string{"2023-02-01", "2023-02-08", "2023-02-15", "2023-02-22"},
			[]string{"2023-02-07", "2023-02-14", "2023-02-21", "2023-02-28"}},
		{"2024-02", []string{"2024-02-01", "2024-02-08", "2024-02-15", "2024-02-22", "2024-02-29"},
			[]string{"2024-02-07", "2024-02-14", "2024-02-21", "2024-02-28", "2024-02-29"}},
	}

	for _, tt := range tests {
		t.Run(tt.month, func(t *testing.T) {
			buckets := WeeklyBuckets(nil, mustMonth(t, tt.month))
			if len(buckets) != len(tt.starts) {
				t.Fatalf("got %d buckets, want %d", len(buckets), len(tt.starts))
			}
			for i, b := range buckets {
				if b.Start != tt.starts[i] || b.End != tt.ends[i] {
					t.Errorf("bucket %d = %s..%s, want %s..%s", i, b.Start, b.End, tt.starts[i], tt.ends[i])
				}
			}
		})
	}
}

func TestWeeklyBucketLabels(t *testing.T) {
	buckets := WeeklyBuckets(nil, mustMonth(t, "2025-09"))
	if buckets[0].Label != "W1 (1–7)" {
		t.Errorf("label = %q, want %q", buckets[0].Label, "W1 (1–7)")
	}
	if buckets[4].Label != "W5 (29–30)" {
		t.Errorf("label = %q, want %q", buckets[4].Label, "W5 (29–30)")
	}
}

func TestWeeklyBucketsSumExpensesOnly(t *testing.T) {
	txs := []model.Transaction{
		tx("2025-09-01", "10", "Food"),
		tx("2025-09-07", "5.50", "Food"),
		tx("2025-09-08", "-3", "Refund"),     // income by sign
		tx("2025-09-15", "100", "Salary"),    // income by category
		tx("2025-09-30", "-20", "Groceries"), // income by sign
		tx("2025-09-30", "20", "Groceries"),
		tx("2025-10-01", "999", "Food"), // other month
		tx("garbage", "999", "Food"),
		tx("", "999", "Food"),
	}

	buckets := WeeklyBuckets(txs, mustMonth(t, "2025-09"))
	want := []string{"15.50", "0", "0", "0", "20"}
	for i, w := range want {
		wantDec(t, buckets[i].Label, buckets[i].Expense, w)
	}
}

func TestWeekRange(t *testing.T) {
	m := mustMonth(t, "2025-02")
	from, to, err := WeekRange(m, 4)
	if err != nil {
		t.Fatal(err)
	}
	if from != "2025-02-22" || to != "2025-02-28" {
		t.Errorf("WeekRange(4) = %s..%s", from, to)
	}
	if _, _, err := WeekRange(m, 5); err == nil {
		t.Error("WeekRange(5) on a 28-day month succeeded, want error")
	}
}

func TestWeeklyBucketsZeroMonth(t *testing.T) {
	if got := WeeklyBuckets([]model.Transaction{tx("2025-09-01", "1", "")}, model.Month{}); len(got) != 0 {
		t.Errorf("got %d buckets for zero month", len(got))
	}
}
