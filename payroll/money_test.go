package payroll

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRoundMoneyHalfUp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0.125", "0.13"},
		{"0.124", "0.12"},
		{"-0.125", "-0.13"},
		{"2.675", "2.68"},
		{"10", "10.00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, RoundMoney(d(tt.in)).StringFixed(2))
		})
	}
}

func TestRoundRate(t *testing.T) {
	assert.Equal(t, "0.0813", RoundRate(d("0.08125")).String())
	assert.Equal(t, "0.1", RoundRate(d("0.1")).String())
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "1234.50 CHF", FormatCurrency(d("1234.5"), ""))
	assert.Equal(t, "0.13 EUR", FormatCurrency(d("0.125"), "EUR"))
	assert.Equal(t, "-300.00 CHF", FormatCurrency(d("-300"), "CHF"))
}

func TestFormatRateAndHours(t *testing.T) {
	assert.Equal(t, "8.10%", FormatRate(d("0.081")))
	assert.Equal(t, "0.00%", FormatRate(decimal.Zero))
	assert.Equal(t, "160.00 h", FormatHours(d("160")))
	assert.Equal(t, "2.33 h", FormatHours(SecondsToHours(8400)))
	assert.Equal(t, "2024-02-29", FormatDate(time.Date(2024, 2, 29, 13, 0, 0, 0, time.UTC)))
}

func TestParseDecimal(t *testing.T) {
	v, ok := ParseDecimal(" 12.5 ")
	assert.True(t, ok)
	assert.Equal(t, "12.5", v.String())

	_, ok = ParseDecimal("")
	assert.False(t, ok)

	v, ok = ParseDecimal("abc")
	assert.False(t, ok)
	assert.True(t, v.IsZero())

	assert.True(t, DecimalOrZero("x1").IsZero())

	for _, raw := range []string{"1e-200000000", "1e200000000", "1e21", "0.000000000000000000001", strings.Repeat("9", 40)} {
		v, ok = ParseDecimal(raw)
		assert.False(t, ok, raw)
		assert.True(t, v.IsZero(), raw)
	}
	assert.Equal(t, "0.00", RoundMoney(DecimalOrZero("1e-200000000")).StringFixed(2))

	v, ok = ParseDecimal("1.5e3")
	assert.True(t, ok)
	assert.Equal(t, "1500", v.String())
}

func TestDecimalOrTreatsZeroAsMissing(t *testing.T) {
	def := DefaultOvertimeMultiplier()
	assert.Equal(t, "1.25", DecimalOr("", def).String())
	assert.Equal(t, "1.25", DecimalOr("0", def).String())
	assert.Equal(t, "1.25", DecimalOr("nope", def).String())
	assert.Equal(t, "1.5", DecimalOr("1.5", def).String())
}

func TestParseOptionalInt(t *testing.T) {
	assert.Nil(t, ParseOptionalInt(""))
	assert.Nil(t, ParseOptionalInt("12a"))
	if v := ParseOptionalInt(" 42 "); assert.NotNil(t, v) {
		assert.Equal(t, 42, *v)
	}
}

func TestDeref(t *testing.T) {
	v := d("3.3")
	assert.True(t, Deref(nil).IsZero())
	assert.Equal(t, "3.3", Deref(&v).String())
	assert.Equal(t, "1.25", DerefOr(nil, DefaultOvertimeMultiplier()).String())
	assert.Equal(t, "3.3", DerefOr(&v, DefaultOvertimeMultiplier()).String())
}
