package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fintrack/internal/model"

	"github.com/shopspring/decimal"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/api/")
}

func sept() model.Month { return model.Month{Year: 2025, Month: 9} }

func TestListTransactionsSendsFilters(t *testing.T) {
	var got *http.Request
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = io.WriteString(w, `[{"id":1,"date":"2025-09-02","merchant":"Cafe","amount":4.5,"category":"Dining","notes":"latte"}]`)
	})

	txs, err := c.ListTransactions(context.Background(), ListQuery{Q: "caf", From: "2025-09-01", Category: "Dining"})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if got.URL.Path != "/api/tx" {
		t.Errorf("path = %s, want /api/tx", got.URL.Path)
	}
	q := got.URL.Query()
	if q.Get("q") != "caf" || q.Get("from") != "2025-09-01" || q.Get("category") != "Dining" {
		t.Errorf("query = %v", q)
	}
	if _, ok := q["to"]; !ok {
		t.Error("empty 'to' parameter not sent")
	}
	if got.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}

	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txs))
	}
	tx := txs[0]
	if tx.ID == nil || *tx.ID != 1 || tx.Merchant != "Cafe" || !tx.Amount.Equal(decimal.RequireFromString("4.5")) {
		t.Errorf("transaction = %+v", tx)
	}
}

func TestListMonthAcceptsBothShapes(t *testing.T) {
	bodies := map[string]string{
		"list": `[{"id":1,"date":"2025-09-02","amount":"12.50","category":"Food"}]`,
		"page": `{"content":[{"id":1,"date":"2025-09-02","amount":"12.50","category":"Food"}],"totalElements":1}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("month") != "2025-09" {
					t.Errorf("month param = %q", r.URL.Query().Get("month"))
				}
				_, _ = io.WriteString(w, body)
			})
			txs, err := c.ListMonth(context.Background(), sept())
			if err != nil {
				t.Fatalf("ListMonth: %v", err)
			}
			if len(txs) != 1 || !txs[0].Amount.Equal(decimal.RequireFromString("12.5")) {
				t.Errorf("txs = %+v", txs)
			}
		})
	}
}

func TestMalformedFieldsDegrade(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[
			{"id":"7","date":"2025-09-02","amount":"abc","category":"Food"},
			{"id":null,"date":"2025-09-03","amount":null,"txType":"Income"},
			{"date":"2025-09-04","amount":-20,"kind":"credit"},
			{"date":20250905,"merchant":{"name":"x"},"amount":5,"type":1,"category":["Food"],"notes":true},
			{"date":"2025-09-06","amount":5,"type":" ","txType":"income"}
		]`)
	})
	txs, err := c.ListTransactions(context.Background(), ListQuery{})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txs) != 5 {
		t.Fatalf("got %d transactions, want 5", len(txs))
	}
	if txs[0].ID == nil || *txs[0].ID != 7 || !txs[0].Amount.IsZero() {
		t.Errorf("txs[0] = %+v, want id 7 amount 0", txs[0])
	}
	if txs[1].ID != nil || txs[1].Kind != "Income" {
		t.Errorf("txs[1] = %+v", txs[1])
	}
	if txs[2].Kind != "credit" {
		t.Errorf("txs[2].Kind = %q, want credit", txs[2].Kind)
	}
	if got := txs[3]; got.Date != "20250905" || got.Kind != "1" || got.Merchant != "" || got.Category != "" || got.Notes != "" {
		t.Errorf("txs[3] = %+v, want numbers as text and other types empty", got)
	}
	if _, ok := txs[3].ParsedDate(); ok {
		t.Error("numeric date should not parse as a calendar date")
	}
	if txs[4].Kind != " " {
		t.Errorf("txs[4].Kind = %q, want the blank type field kept", txs[4].Kind)
	}
}

func TestSummaryAliases(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tx/summary" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"month":"2025-09","categoryTotals":{"Food":"35.5","Rent":1000},"totalIncome":2500,"expense":"1035.50","net":null,"count":4}`)
	})
	p, err := c.Summary(context.Background(), sept())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if p.ByCategory != nil {
		t.Errorf("ByCategory = %v, want nil (absent)", p.ByCategory)
	}
	if !p.CategoryTotals["Food"].Equal(decimal.RequireFromString("35.5")) {
		t.Errorf("CategoryTotals = %v", p.CategoryTotals)
	}
	if p.TotalIncome == nil || !p.TotalIncome.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("TotalIncome = %v", p.TotalIncome)
	}
	if p.Income != nil || p.TotalExpense != nil || p.Net != nil {
		t.Errorf("absent fields decoded: income=%v totalExpense=%v net=%v", p.Income, p.TotalExpense, p.Net)
	}
	if p.Expense == nil || !p.Expense.Equal(decimal.RequireFromString("1035.5")) {
		t.Errorf("Expense = %v", p.Expense)
	}
	if p.Count == nil || *p.Count != 4 {
		t.Errorf("Count = %v", p.Count)
	}
}

func TestInsights(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"month":"2025-09","summary":"Spending is steady."}`)
	})
	s, err := c.Insights(context.Background(), sept())
	if err != nil || s != "Spending is steady." {
		t.Errorf("Insights = %q, %v", s, err)
	}
}

func TestCreateOmitsID(t *testing.T) {
	var body map[string]any
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		_, _ = io.WriteString(w, `{"id":42,"date":"2025-09-03","merchant":"Gym","amount":30,"category":"Health","notes":""}`)
	})

	id := int64(9)
	created, err := c.Create(context.Background(), model.Transaction{
		ID: &id, Date: "2025-09-03", Merchant: "Gym", Amount: decimal.NewFromInt(30), Category: "Health",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, ok := body["id"]; ok {
		t.Errorf("POST body carried id: %v", body)
	}
	if amt, ok := body["amount"].(float64); !ok || amt != 30 {
		t.Errorf("amount = %#v, want JSON number 30", body["amount"])
	}
	if created.ID == nil || *created.ID != 42 {
		t.Errorf("created.ID = %v, want 42", created.ID)
	}
}

func TestDeleteAndStatusErrors(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete && strings.HasSuffix(r.URL.Path, "/tx/5"):
			w.WriteHeader(http.StatusNoContent)
		case strings.HasSuffix(r.URL.Path, "/tx/6"):
			w.WriteHeader(http.StatusNotFound)
		case r.URL.Path == "/api/tx/summary":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusTeapot)
		}
	})

	ctx := context.Background()
	if err := c.Delete(ctx, 5); err != nil {
		t.Errorf("Delete(5): %v", err)
	}
	if err := c.Delete(ctx, 6); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(6) err = %v, want ErrNotFound", err)
	}
	if _, err := c.Get(ctx, 6); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(6) err = %v, want ErrNotFound", err)
	}
	if _, err := c.Summary(ctx, sept()); !errors.Is(err, ErrServer) {
		t.Errorf("Summary err = %v, want ErrServer", err)
	}
	if _, err := c.Insights(ctx, sept()); err == nil {
		t.Error("Insights on 418 succeeded")
	}
}

func TestTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	c := NewClient(srv.URL, WithTimeout(50*time.Millisecond))
	start := time.Now()
	if _, err := c.ListMonth(context.Background(), sept()); err == nil {
		t.Fatal("ListMonth returned no error after timeout")
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("timeout took %v", time.Since(start))
	}
}

func TestNewClientDefaults(t *testing.T) {
	if got := NewClient("").BaseURL(); got != DefaultBaseURL {
		t.Errorf("BaseURL() = %q, want %q", got, DefaultBaseURL)
	}
	if got := NewClient(" http://x/api/ ").BaseURL(); got != "http://x/api" {
		t.Errorf("BaseURL() = %q", got)
	}
}
