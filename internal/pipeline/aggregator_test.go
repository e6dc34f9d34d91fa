package pipeline

import (
	"math"
	"testing"

	"fintrack/internal/model"

	"github.com/shopspring/decimal"
)

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil)
	wantDec(t, "Income", s.Income, "0")
	wantDec(t, "Expense", s.Expense, "0")
	wantDec(t, "Net", s.Net, "0")
	if s.Count != 0 {
		t.Errorf("Count = %d, want 0", s.Count)
	}
	if len(s.ByCategory) != 0 {
		t.Errorf("ByCategory = %v, want empty", s.ByCategory)
	}
}

func TestAggregateSalaryAndFood(t *testing.T) {
	s := Aggregate([]model.Transaction{
		tx("2025-09-01", "-50", "Salary"),
		tx("2025-09-02", "20", "Food"),
		tx("2025-09-03", "15", "Food"),
	})
	wantDec(t, "Income", s.Income, "50")
	wantDec(t, "Expense", s.Expense, "35")
	wantDec(t, "Net", s.Net, "15")
	if s.Count != 3 {
		t.Errorf("Count = %d, want 3", s.Count)
	}
	if len(s.ByCategory) != 1 {
		t.Fatalf("ByCategory = %v, want only Food", s.ByCategory)
	}
	wantDec(t, "ByCategory[Food]", s.ByCategory["Food"], "35")
}

func TestAggregateUncategorized(t *testing.T) {
	s := Aggregate([]model.Transaction{
		tx("2025-09-01", "7.25", "   "),
		tx("2025-09-01", "2.75", ""),
		tx("2025-09-01", "1", " Food "),
	})
	wantDec(t, "ByCategory[Uncategorized]", s.ByCategory[UncategorizedLabel], "10")
	wantDec(t, "ByCategory[Food]", s.ByCategory["Food"], "1")
}

func TestCoalescePrefersPayloadFields(t *testing.T) {
	local := Aggregate([]model.Transaction{
		tx("2025-09-01", "-100", "Salary"),
		tx("2025-09-02", "40", "Food"),
	})

	income := dec("900")
	expense := dec("300")
	count := 12
	p := &model.SummaryPayload{
		TotalIncome: &income,
		Expense:     &expense,
		Count:       &count,
		ByCategory:  map[string]decimal.Decimal{"Rent": dec("300")},
	}

	got := Coalesce(p, local)
	wantDec(t, "Income", got.Income, "900")
	wantDec(t, "Expense", got.Expense, "300")
	wantDec(t, "Net", got.Net, "600") // derived from coalesced income/expense
	if got.Count != 12 {
		t.Errorf("Count = %d, want 12", got.Count)
	}
	if _, ok := got.ByCategory["Rent"]; !ok || len(got.ByCategory) != 1 {
		t.Errorf("ByCategory = %v, want payload map", got.ByCategory)
	}
}

func TestCoalesceAliasPrecedence(t *testing.T) {
	a, b := dec("1"), dec("2")
	net := dec("-5")
	p := &model.SummaryPayload{
		TotalIncome:    &a,
		Income:         &b,
		Net:            &net,
		CategoryTotals: map[string]decimal.Decimal{"Food": dec("3")},
	}
	got := Coalesce(p, model.Summary{Count: 4, Expense: dec("10")})
	wantDec(t, "Income", got.Income, "1")
	wantDec(t, "Expense", got.Expense, "10")
	wantDec(t, "Net", got.Net, "-5")
	wantDec(t, "ByCategory[Food]", got.ByCategory["Food"], "3")
	if got.Count != 4 {
		t.Errorf("Count = %d, want local 4", got.Count)
	}
}

func TestCoalesceNilPayloadReturnsLocal(t *testing.T) {
	local := Aggregate([]model.Transaction{tx("2025-09-02", "40", "Food")})
	got := Coalesce(nil, local)
	wantDec(t, "Expense", got.Expense, "40")
	if got.Count != 1 {
		t.Errorf("Count = %d, want 1", got.Count)
	}
}

func TestPercentChange(t *testing.T) {
	if p := PercentChange(10, 0); p != nil {
		t.Errorf("PercentChange(10, 0) = %v, want nil", *p)
	}
	if p := PercentChange(10, 1e-12); p != nil {
		t.Errorf("PercentChange(10, 1e-12) = %v, want nil", *p)
	}
	if p := PercentChange(10, math.NaN()); p != nil {
		t.Errorf("PercentChange(10, NaN) = %v, want nil", *p)
	}
	if p := PercentChange(10, math.Inf(-1)); p != nil {
		t.Errorf("PercentChange(10, -Inf) = %v, want nil", *p)
	}
	p := PercentChange(150, 100)
	if p == nil || math.Abs(*p-50) > 1e-9 {
		t.Fatalf("PercentChange(150, 100) = %v, want 50", p)
	}
	p = PercentChange(50, -100)
	if p == nil || math.Abs(*p-(-150)) > 1e-9 {
		t.Fatalf("PercentChange(50, -100) = %v, want -150", p)
	}
}

func TestCompare(t *testing.T) {
	cur := model.Summary{Income: dec("200"), Expense: dec("120"), Net: dec("80"), Count: 6}
	prev := model.Summary{Income: dec("0"), Expense: dec("100"), Net: dec("-100"), Count: 3}

	c := Compare(cur, prev)
	wantDec(t, "Income.Delta", c.Income.Delta, "200")
	if c.Income.Percent != nil {
		t.Errorf("Income.Percent = %v, want nil", *c.Income.Percent)
	}
	wantDec(t, "Expense.Delta", c.Expense.Delta, "20")
	if c.Expense.Percent == nil || math.Abs(*c.Expense.Percent-20) > 1e-9 {
		t.Errorf("Expense.Percent = %v, want 20", c.Expense.Percent)
	}
	wantDec(t, "Count.Delta", c.Count.Delta, "3")
}

func TestTopCategories(t *testing.T) {
	s := Aggregate([]model.Transaction{
		tx("2025-09-01", "50", "Rent"),
		tx("2025-09-01", "25", "Food"),
		tx("2025-09-01", "10", "Fun"),
		tx("2025-09-01", "10", "Books"),
		tx("2025-09-01", "3", "Gas"),
		tx("2025-09-01", "2", "Misc"),
	})
	top := TopCategories(s, 5)
	if len(top) != 5 {
		t.Fatalf("len = %d, want 5", len(top))
	}
	if top[0].Category != "Rent" || top[0].SharePercent != 50 {
		t.Errorf("top[0] = %+v, want Rent 50%%", top[0])
	}
	if top[2].Category != "Books" || top[3].Category != "Fun" {
		t.Errorf("tie order = %s, %s; want Books, Fun", top[2].Category, top[3].Category)
	}

	if got := TopCategories(model.Summary{}, 5); len(got) != 0 {
		t.Errorf("empty summary gave %v", got)
	}
}

func TestShownTotals(t *testing.T) {
	tot := ShownTotals([]model.Transaction{
		tx("2025-09-01", "-1000", "Paycheck"),
		tx("2025-09-02", "250.50", "Rent"),
	})
	wantDec(t, "Income", tot.Income, "1000")
	wantDec(t, "Expense", tot.Expense, "250.50")
	wantDec(t, "Net", tot.Net, "749.50")
}

func TestDeltaTrend(t *testing.T) {
	tests := []struct {
		delta    string
		upIsGood bool
		want     Trend
	}{
		{"20", true, TrendGood},
		{"20", false, TrendBad},
		{"-20", false, TrendGood},
		{"-20", true, TrendBad},
		{"0.004", false, TrendFlat},
		{"-0.004", true, TrendFlat},
	}
	for _, tt := range tests {
		d := model.MetricDelta{Delta: dec(tt.delta)}
		if got := DeltaTrend(d, tt.upIsGood); got != tt.want {
			t.Errorf("DeltaTrend(%s, %v) = %d, want %d", tt.delta, tt.upIsGood, got, tt.want)
		}
	}
}
