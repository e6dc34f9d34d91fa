package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"fintrack/internal/model"
)

// SortKey names a transaction table column.
type SortKey string

const (
	SortDate     SortKey = "date"
	SortMerchant SortKey = "merchant"
	SortAmount   SortKey = "amount"
	SortCategory SortKey = "category"
)

// SortKeys lists the sortable columns in display order.
var SortKeys = []SortKey{SortDate, SortMerchant, SortAmount, SortCategory}

// ParseSortKey validates a column name.
func ParseSortKey(s string) (SortKey, error) {
	k := SortKey(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range SortKeys {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown sort key %q (want date, merchant, amount, or category)", s)
}

// SortState is the active sort column and direction.
type SortState struct {
	Key  SortKey
	Desc bool
}

// DefaultSort is newest first.
func DefaultSort() SortState {
	return SortState{Key: SortDate, Desc: true}
}

// Toggle selects key. Re-selecting the active key flips direction; a new key
// starts descending for dates and ascending otherwise.
func (s SortState) Toggle(key SortKey) SortState {
	if key == s.Key {
		return SortState{Key: key, Desc: !s.Desc}
	}
	return SortState{Key: key, Desc: key == SortDate}
}

// Next cycles to the following column using Toggle semantics.
func (s SortState) Next() SortState {
	for i, k := range SortKeys {
		if k == s.Key {
			return s.Toggle(SortKeys[(i+1)%len(SortKeys)])
		}
	}
	return DefaultSort()
}

// Arrow returns the direction glyph for a column header.
func (s SortState) Arrow(key SortKey) string {
	if key != s.Key {
		return ""
	}
	if s.Desc {
		return " ▼"
	}
	return " ▲"
}

// SortTransactions returns a sorted copy. Unparsable dates sort as the
// earliest possible date; ties keep input order.
func SortTransactions(txs []model.Transaction, s SortState) []model.Transaction {
	out := make([]model.Transaction, len(txs))
	copy(out, txs)

	compare := func(a, b model.Transaction) int {
		switch s.Key {
		case SortAmount:
			return a.Amount.Cmp(b.Amount)
		case SortMerchant:
			return strings.Compare(strings.ToLower(a.Merchant), strings.ToLower(b.Merchant))
		case SortCategory:
			return strings.Compare(strings.ToLower(a.Category), strings.ToLower(b.Category))
		default:
			da, _ := a.ParsedDate()
			db, _ := b.ParsedDate()
			return da.Compare(db)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := compare(out[i], out[j])
		if s.Desc {
			return c > 0
		}
		return c < 0
	})
	return out
}
