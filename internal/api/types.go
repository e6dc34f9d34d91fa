package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"fintrack/internal/model"

	"github.com/shopspring/decimal"
)

// transactionPayload is the wire shape of a transaction. Numeric fields are
// kept raw because backends disagree on number vs string encoding.
type transactionPayload struct {
	ID       json.RawMessage `json:"id,omitempty"`
	Date     looseString     `json:"date"`
	Merchant looseString     `json:"merchant"`
	Amount   json.RawMessage `json:"amount"`
	Category looseString     `json:"category"`
	Notes    looseString     `json:"notes"`
	Type     looseString     `json:"type"`
	TxType   looseString     `json:"txType"`
	Kind     looseString     `json:"kind"`
}

// looseString decodes a JSON string, or a number as its literal text.
// Anything else (objects, arrays, booleans, null) decodes as empty so one
// dirty record cannot fail the whole list.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = looseString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*s = looseString(n.String())
		return nil
	}
	*s = ""
	return nil
}

// newTransaction is the POST body. It never carries an id.
type newTransaction struct {
	Date     string      `json:"date"`
	Merchant string      `json:"merchant"`
	Amount   json.Number `json:"amount"`
	Category string      `json:"category"`
	Notes    string      `json:"notes"`
	Type     string      `json:"type,omitempty"`
}

// pageResponse is the paged list shape some backends return.
type pageResponse struct {
	Content []transactionPayload `json:"content"`
}

// summaryResponse is the raw summary payload. Each alias is decoded on its
// own so Coalesce can apply precedence between them.
type summaryResponse struct {
	Month          string                     `json:"month"`
	ByCategory     map[string]json.RawMessage `json:"byCategory"`
	CategoryTotals map[string]json.RawMessage `json:"categoryTotals"`
	TotalIncome    json.RawMessage            `json:"totalIncome"`
	Income         json.RawMessage            `json:"income"`
	TotalExpense   json.RawMessage            `json:"totalExpense"`
	Expense        json.RawMessage            `json:"expense"`
	Net            json.RawMessage            `json:"net"`
	Count          json.RawMessage            `json:"count"`
}

type insightResponse struct {
	Month   string `json:"month"`
	Summary string `json:"summary"`
}

func (p transactionPayload) toModel() model.Transaction {
	tx := model.Transaction{
		Date:     string(p.Date),
		Merchant: string(p.Merchant),
		Category: string(p.Category),
		Notes:    string(p.Notes),
		Kind:     firstNonEmpty(string(p.Type), string(p.TxType), string(p.Kind)),
	}
	if amt, ok := parseAmount(p.Amount); ok {
		tx.Amount = amt
	}
	if id, ok := parseID(p.ID); ok {
		tx.ID = &id
	}
	return tx
}

func toPayload(tx model.Transaction) newTransaction {
	return newTransaction{
		Date:     tx.Date,
		Merchant: tx.Merchant,
		Amount:   json.Number(tx.Amount.String()),
		Category: tx.Category,
		Notes:    tx.Notes,
		Type:     tx.Kind,
	}
}

func (r summaryResponse) toModel() *model.SummaryPayload {
	p := &model.SummaryPayload{
		Month:          r.Month,
		ByCategory:     parseAmountMap(r.ByCategory),
		CategoryTotals: parseAmountMap(r.CategoryTotals),
		TotalIncome:    optionalAmount(r.TotalIncome),
		Income:         optionalAmount(r.Income),
		TotalExpense:   optionalAmount(r.TotalExpense),
		Expense:        optionalAmount(r.Expense),
		Net:            optionalAmount(r.Net),
	}
	if n, ok := parseAmount(r.Count); ok {
		c := int(n.IntPart())
		p.Count = &c
	}
	return p
}

func convertAll(payloads []transactionPayload) []model.Transaction {
	out := make([]model.Transaction, len(payloads))
	for i, p := range payloads {
		out[i] = p.toModel()
	}
	return out
}

// parseAmount defensively parses a polymorphic numeric field.
// Handles JSON numbers and numeric strings ("12.50", " -3 ").
// Returns false for null, empty, or unparseable input.
func parseAmount(raw json.RawMessage) (decimal.Decimal, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, false
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if d, err := decimal.NewFromString(n.String()); err == nil {
			return d, true
		}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if d, err := decimal.NewFromString(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}

	return decimal.Zero, false
}

func optionalAmount(raw json.RawMessage) *decimal.Decimal {
	d, ok := parseAmount(raw)
	if !ok {
		return nil
	}
	return &d
}

// parseAmountMap converts a category map. A nil map (absent or null)
// stays nil; unparseable values degrade to zero.
func parseAmountMap(raw map[string]json.RawMessage) map[string]decimal.Decimal {
	if raw == nil {
		return nil
	}
	out := make(map[string]decimal.Decimal, len(raw))
	for k, v := range raw {
		d, _ := parseAmount(v)
		out[k] = d
	}
	return out
}

func parseID(raw json.RawMessage) (int64, bool) {
	d, ok := parseAmount(raw)
	if !ok || !d.IsInteger() {
		return 0, false
	}
	return d.IntPart(), true
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// formatID renders an id for a URL path.
func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
