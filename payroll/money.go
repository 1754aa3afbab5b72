package payroll

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is appended to every formatted amount unless the caller
// configures another code.
const DefaultCurrency = "CHF"

var (
	hundred           = decimal.NewFromInt(100)
	secondsPerHour    = decimal.NewFromInt(3600)
	defaultMultiplier = decimal.RequireFromString("1.25")
)

// RoundMoney quantizes to cents, half away from zero (0.125 -> 0.13).
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundHours quantizes hours to two fractional digits.
func RoundHours(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundRate quantizes a rate fraction to four digits, i.e. hundredths of a percent.
func RoundRate(d decimal.Decimal) decimal.Decimal {
	return d.Round(4)
}

// FormatCurrency renders "1234.50 CHF".
func FormatCurrency(d decimal.Decimal, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	return RoundMoney(d).StringFixed(2) + " " + currency
}

// FormatRate renders a fraction as a percentage: 0.081 -> "8.10%".
func FormatRate(d decimal.Decimal) string {
	return d.Mul(hundred).Round(2).StringFixed(2) + "%"
}

func FormatHours(d decimal.Decimal) string {
	return RoundHours(d).StringFixed(2) + " h"
}

func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// Bounds for boundary input. Rounding a value with a huge exponent does not
// terminate in reasonable time, so such input counts as malformed.
const (
	maxInputLen      = 64
	maxInputExponent = 20
	maxInputDigits   = 30
)

// ParseDecimal parses a boundary value. Empty or malformed input reports
// ok=false; callers coerce that to zero instead of rejecting the request.
func ParseDecimal(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxInputLen {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	if exp := d.Exponent(); exp > maxInputExponent || exp < -maxInputExponent {
		return decimal.Zero, false
	}
	if d.NumDigits() > maxInputDigits {
		return decimal.Zero, false
	}
	return d, true
}

// DecimalOrZero is ParseDecimal with the zero default applied.
func DecimalOrZero(raw string) decimal.Decimal {
	d, _ := ParseDecimal(raw)
	return d
}

// DecimalOr returns def when raw is empty, malformed or zero.
func DecimalOr(raw string, def decimal.Decimal) decimal.Decimal {
	d, ok := ParseDecimal(raw)
	if !ok || d.IsZero() {
		return def
	}
	return d
}

// ParseOptionalInt returns nil for empty or malformed input.
func ParseOptionalInt(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

// Deref turns a nullable column into a value, nil meaning zero.
func Deref(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// DerefOr is Deref with an explicit default for nil.
func DerefOr(d *decimal.Decimal, def decimal.Decimal) decimal.Decimal {
	if d == nil {
		return def
	}
	return *d
}

// DefaultOvertimeMultiplier is applied when an employee has none configured.
func DefaultOvertimeMultiplier() decimal.Decimal {
	return defaultMultiplier
}
