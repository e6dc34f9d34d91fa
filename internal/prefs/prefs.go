// Package prefs persists the list filters and display preferences that
// survive between runs.
package prefs

import (
	"errors"

	"fintrack/internal/kv"
	"fintrack/internal/model"
)

// Filters is the persisted transaction list query plus the active month.
type Filters struct {
	Q        string `json:"q"`
	From     string `json:"from"`
	To       string `json:"to"`
	Category string `json:"category"`
	Month    string `json:"month"`
}

// WithMonth switches to m and resets the date range to cover all of it.
func (f Filters) WithMonth(m model.Month) Filters {
	f.Month = m.String()
	f.From = m.First()
	f.To = m.Last()
	return f
}

// Cleared drops the query, range, and category but keeps the month.
func (f Filters) Cleared() Filters {
	return Filters{Month: f.Month}
}

// LoadFilters returns the saved filters. On any failure it returns the
// zero value with the error so callers can log and continue.
func LoadFilters(s kv.Store) (Filters, error) {
	var f Filters
	if err := kv.GetJSON(s, kv.KeyFilters, &f); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return Filters{}, nil
		}
		return Filters{}, err
	}
	return f, nil
}

// SaveFilters stores f.
func SaveFilters(s kv.Store, f Filters) error {
	return kv.SetJSON(s, kv.KeyFilters, f)
}

// LoadDarkMode returns the saved dark-mode flag, false when unset or unreadable.
func LoadDarkMode(s kv.Store) (bool, error) {
	var dark bool
	if err := kv.GetJSON(s, kv.KeyDarkMode, &dark); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return dark, nil
}

// SaveDarkMode stores the dark-mode flag.
func SaveDarkMode(s kv.Store, dark bool) error {
	return kv.SetJSON(s, kv.KeyDarkMode, dark)
}

// HasDarkMode reports whether a dark-mode flag has been saved.
func HasDarkMode(s kv.Store) bool {
	_, err := s.Get(kv.KeyDarkMode)
	return err == nil
}
