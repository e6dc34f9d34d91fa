package model

import "github.com/shopspring/decimal"

// Budget is a monthly spending limit for one category.
type Budget struct {
	Category string          `json:"category"`
	Limit    decimal.Decimal `json:"limit"`
}

// Severity grades how close a category is to its limit.
type Severity int

const (
	SeverityNormal Severity = iota
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityWarning:
		return "warning"
	default:
		return "normal"
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a severity name. Unknown names read as normal.
func (s *Severity) UnmarshalText(b []byte) error {
	switch string(b) {
	case "critical":
		*s = SeverityCritical
	case "warning":
		*s = SeverityWarning
	default:
		*s = SeverityNormal
	}
	return nil
}

// Pace describes spend relative to a linear pro-rating of the limit.
type Pace string

const (
	PaceOver  Pace = "over"
	PaceUnder Pace = "under"
	PaceOn    Pace = "on pace"
)

// Alert holds budget tracking and pacing data for one category.
type Alert struct {
	Category    string          `json:"category"`
	Limit       decimal.Decimal `json:"limit"`
	Spent       decimal.Decimal `json:"spent"`
	Ratio       float64         `json:"ratio"`
	Percent     int             `json:"percent"` // capped at 100
	Severity    Severity        `json:"severity"`
	Expected    decimal.Decimal `json:"expected"`
	PaceDelta   decimal.Decimal `json:"paceDelta"`
	Pace        Pace            `json:"pace"`
	DaysElapsed int             `json:"daysElapsed"`
	TotalDays   int             `json:"totalDays"`
}
