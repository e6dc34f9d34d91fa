// Package budget manages per-category monthly limits and evaluates spending
// against them.
package budget

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"fintrack/internal/kv"
	"fintrack/internal/model"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidCategory is returned when a budget names no category.
	ErrInvalidCategory = errors.New("budget: category is required")
	// ErrInvalidLimit is returned when a limit is not a positive amount.
	ErrInvalidLimit = errors.New("budget: limit must be a positive amount")
)

// Normalize returns the uniqueness key for a category: trimmed, lowercased,
// and "uncategorized" when empty.
func Normalize(category string) string {
	n := strings.ToLower(strings.TrimSpace(category))
	if n == "" {
		return "uncategorized"
	}
	return n
}

// Book is the set of budgets keyed by normalized category.
type Book struct {
	entries map[string]model.Budget
}

// NewBook returns an empty book.
func NewBook() *Book {
	return &Book{entries: make(map[string]model.Budget)}
}

// ParseLimit parses a user-entered limit.
func ParseLimit(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidLimit, s)
	}
	return d, nil
}

// Set adds or replaces the budget for category. Any entry whose normalized
// name matches is removed first, so "food" replaces "Food".
func (b *Book) Set(category string, limit decimal.Decimal) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return ErrInvalidCategory
	}
	if !limit.IsPositive() {
		return ErrInvalidLimit
	}
	key := Normalize(category)
	delete(b.entries, key)
	b.entries[key] = model.Budget{Category: category, Limit: limit}
	return nil
}

// Remove deletes the budget matching category by normalized name. It
// reports whether an entry was removed.
func (b *Book) Remove(category string) bool {
	key := Normalize(category)
	if _, ok := b.entries[key]; !ok {
		return false
	}
	delete(b.entries, key)
	return true
}

// Get returns the budget for category by normalized name.
func (b *Book) Get(category string) (model.Budget, bool) {
	bud, ok := b.entries[Normalize(category)]
	return bud, ok
}

// Len returns the number of budgets.
func (b *Book) Len() int { return len(b.entries) }

// List returns budgets sorted by normalized category.
func (b *Book) List() []model.Budget {
	keys := make([]string, 0, len(b.entries))
	for k := range b.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]model.Budget, len(keys))
	for i, k := range keys {
		out[i] = b.entries[k]
	}
	return out
}

// Load reads the book from s. Missing or unreadable state yields an empty
// book and the underlying error, which callers may ignore.
func Load(s kv.Store) (*Book, error) {
	b := NewBook()
	var raw map[string]model.Budget
	if err := kv.GetJSON(s, kv.KeyBudgets, &raw); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return b, nil
		}
		return b, err
	}
	for _, bud := range raw {
		// Re-keyed through Set so hand-edited state cannot hold duplicates
		// or non-positive limits.
		_ = b.Set(bud.Category, bud.Limit)
	}
	return b, nil
}

// Save writes the book to s.
func (b *Book) Save(s kv.Store) error {
	return kv.SetJSON(s, kv.KeyBudgets, b.entries)
}
