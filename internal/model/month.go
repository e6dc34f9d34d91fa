package model

import (
	"fmt"
	"time"
)

// Month identifies a calendar month, serialized as YYYY-MM.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q (want YYYY-MM)", s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// IsZero reports whether m is unset.
func (m Month) IsZero() bool { return m.Year == 0 && m.Month == 0 }

func (m Month) String() string {
	if m.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Compact returns YYYYMM, used in export filenames.
func (m Month) Compact() string {
	if m.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d%02d", m.Year, int(m.Month))
}

// Label returns a short display label such as "Sep 2025".
func (m Month) Label() string {
	if m.IsZero() {
		return ""
	}
	return m.Start().Format("Jan 2006")
}

// Start returns midnight UTC on the first day of the month.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Days returns the number of days in the month, leap years included.
func (m Month) Days() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Prev returns the preceding month.
func (m Month) Prev() Month {
	return MonthOf(m.Start().AddDate(0, -1, 0))
}

// Next returns the following month.
func (m Month) Next() Month {
	return MonthOf(m.Start().AddDate(0, 1, 0))
}

// Day returns the ISO date of the given day-of-month.
func (m Month) Day(day int) string {
	return fmt.Sprintf("%s-%02d", m.String(), day)
}

// First returns the ISO date of day 1.
func (m Month) First() string { return m.Day(1) }

// Last returns the ISO date of the final day.
func (m Month) Last() string { return m.Day(m.Days()) }

// Contains reports whether t falls within the month.
func (m Month) Contains(t time.Time) bool {
	return t.Year() == m.Year && t.Month() == m.Month
}

// Compare orders months: -1 if m is before o, +1 if after, 0 if equal.
func (m Month) Compare(o Month) int {
	switch {
	case m.Year < o.Year, m.Year == o.Year && m.Month < o.Month:
		return -1
	case m == o:
		return 0
	default:
		return 1
	}
}
