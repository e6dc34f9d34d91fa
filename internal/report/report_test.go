package report

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"fintrack/internal/logger"
	"fintrack/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type fakeSource struct {
	mu        sync.Mutex
	txs       map[string][]model.Transaction
	summaries map[string]*model.SummaryPayload
	insight   string
	listErr   error
	sumErr    map[string]error
	insErr    error
	calls     []string
}

func (f *fakeSource) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeSource) ListMonth(_ context.Context, m model.Month) ([]model.Transaction, error) {
	f.record("list " + m.String())
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.txs[m.String()], nil
}

func (f *fakeSource) Summary(_ context.Context, m model.Month) (*model.SummaryPayload, error) {
	f.record("summary " + m.String())
	if err := f.sumErr[m.String()]; err != nil {
		return nil, err
	}
	if s, ok := f.summaries[m.String()]; ok {
		return s, nil
	}
	return &model.SummaryPayload{Month: m.String()}, nil
}

func (f *fakeSource) Insights(_ context.Context, m model.Month) (string, error) {
	f.record("insights " + m.String())
	return f.insight, f.insErr
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

var sept = model.Month{Year: 2025, Month: 9}

func septTxs() []model.Transaction {
	return []model.Transaction{
		{Date: "2025-09-01", Amount: dec("-3000"), Category: "Salary"},
		{Date: "2025-09-03", Amount: dec("60"), Category: "Food"},
		{Date: "2025-09-20", Amount: dec("1200"), Category: "Rent"},
	}
}

func TestBuildCoalescesAndCompares(t *testing.T) {
	src := &fakeSource{
		txs: map[string][]model.Transaction{"2025-09": septTxs()},
		summaries: map[string]*model.SummaryPayload{
			"2025-08": {TotalExpense: ptr(dec("1000")), TotalIncome: ptr(dec("3000"))},
		},
		insight: "Rent dominates.",
	}

	r, err := Build(context.Background(), src, sept)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !r.Summary.Expense.Equal(dec("1260")) || !r.Summary.Income.Equal(dec("3000")) {
		t.Errorf("summary = %+v", r.Summary)
	}
	if r.Comparison == nil {
		t.Fatal("Comparison is nil")
	}
	if !r.Comparison.Expense.Delta.Equal(dec("260")) {
		t.Errorf("expense delta = %s, want 260", r.Comparison.Expense.Delta)
	}
	if r.Comparison.Income.Percent == nil || *r.Comparison.Income.Percent != 0 {
		t.Errorf("income percent = %v, want 0", r.Comparison.Income.Percent)
	}
	if r.Insight != "Rent dominates." {
		t.Errorf("Insight = %q", r.Insight)
	}
	if len(r.Weeks) != 5 || !r.Weeks[2].Expense.Equal(dec("1200")) {
		t.Errorf("weeks = %+v", r.Weeks)
	}
	if len(r.Top) != 2 || r.Top[0].Category != "Rent" {
		t.Errorf("top = %+v", r.Top)
	}
	if len(r.Warnings) != 0 {
		t.Errorf("warnings = %v", r.Warnings)
	}
}

func TestBuildToleratesSecondaryFailures(t *testing.T) {
	src := &fakeSource{
		txs:    map[string][]model.Transaction{"2025-09": septTxs()},
		sumErr: map[string]error{"2025-09": errors.New("502"), "2025-08": errors.New("timeout")},
		insErr: errors.New("llm down"),
	}
	r, err := Build(context.Background(), src, sept)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if r.Insight != "" {
		t.Errorf("Insight = %q, want empty", r.Insight)
	}
	if r.Previous != nil || r.Comparison != nil {
		t.Error("comparison present despite failed previous summary")
	}
	if !r.Summary.Net.Equal(dec("1740")) {
		t.Errorf("local net = %s, want 1740", r.Summary.Net)
	}
	if len(r.Warnings) != 1 || !strings.Contains(r.Warnings[0], "summary unavailable") {
		t.Errorf("warnings = %v", r.Warnings)
	}
}

func TestBuildPropagatesListFailure(t *testing.T) {
	boom := errors.New("connection refused")
	src := &fakeSource{listErr: boom}
	if _, err := Build(context.Background(), src, sept); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped %v", err, boom)
	}
}

func TestBudgetsWarnOnFetchFailure(t *testing.T) {
	now := time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)
	budgets := []model.Budget{{Category: "Food", Limit: dec("100")}}

	alerts, warning := Budgets(context.Background(), &fakeSource{listErr: errors.New("down")}, budgets, sept, now)
	if warning == "" {
		t.Error("no warning on failed fetch")
	}
	if len(alerts) != 1 || !alerts[0].Spent.IsZero() {
		t.Errorf("alerts = %+v, want one zero-spend alert", alerts)
	}

	src := &fakeSource{txs: map[string][]model.Transaction{"2025-09": {{Amount: dec("90"), Category: "food"}}}}
	alerts, warning = Budgets(context.Background(), src, budgets, sept, now)
	if warning != "" || alerts[0].Severity != model.SeverityWarning {
		t.Errorf("alerts = %+v, warning = %q", alerts, warning)
	}
}

func TestBudgetsSkipFetchWithoutBudgets(t *testing.T) {
	src := &fakeSource{}
	alerts, _ := Budgets(context.Background(), src, nil, sept, time.Now())
	if len(alerts) != 0 || len(src.calls) != 0 {
		t.Errorf("alerts = %v, calls = %v", alerts, src.calls)
	}
}

func TestBuildLogsSoftFailuresToContextLogger(t *testing.T) {
	src := &fakeSource{
		txs:    map[string][]model.Transaction{"2025-09": septTxs()},
		sumErr: map[string]error{"2025-09": errors.New("boom")},
		insErr: errors.New("no insight"),
	}
	var buf bytes.Buffer
	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(&buf, zerolog.DebugLevel))

	if _, err := Build(ctx, src, sept); err != nil {
		t.Fatalf("Build: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"summary unavailable, using local totals", "insight unavailable", `"error":"boom"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}
