package cli

import (
	"testing"

	"fintrack/internal/model"

	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"0", "$0.00"},
		{"4.5", "$4.50"},
		{"1234.567", "$1,234.57"},
		{"-3", "-$3.00"},
		{"1000000", "$1,000,000.00"},
	}
	for _, tt := range tests {
		if got := FormatMoney(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("FormatMoney(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestFormatDelta(t *testing.T) {
	pct := 12.5
	if got := FormatDelta(decimal.NewFromInt(20), &pct); got != "+$20.00 (+12.5%)" {
		t.Errorf("FormatDelta = %q", got)
	}
	if got := FormatDelta(decimal.NewFromInt(-5), nil); got != "-$5.00" {
		t.Errorf("FormatDelta(nil pct) = %q", got)
	}
	if got := FormatCountDelta(decimal.NewFromInt(-2)); got != "-2" {
		t.Errorf("FormatCountDelta = %q", got)
	}
	if got := FormatPercentChange(nil); got != "n/a" {
		t.Errorf("FormatPercentChange(nil) = %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	if got := FormatNumber(1234567); got != "1,234,567" {
		t.Errorf("FormatNumber = %s", got)
	}
	if got := FormatNumber(-999); got != "-999" {
		t.Errorf("FormatNumber(-999) = %s", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("Whole Foods Market", 8); got != "Whole F…" {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("short", 8); got != "short" {
		t.Errorf("Truncate = %q", got)
	}
}

func TestFormatPace(t *testing.T) {
	tests := []struct {
		delta, want string
	}{
		{"12.5", "should be ≤ $40.00; you are $12.50 over"},
		{"-4", "should be ≤ $40.00; you are $4.00 under"},
		{"0", "should be ≤ $40.00; you are on track"},
	}
	for _, tt := range tests {
		a := model.Alert{Expected: decimal.NewFromInt(40), PaceDelta: decimal.RequireFromString(tt.delta)}
		if got := FormatPace(a); got != tt.want {
			t.Errorf("FormatPace(delta %s) = %q, want %q", tt.delta, got, tt.want)
		}
	}
}
