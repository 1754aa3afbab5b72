package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"timetracking/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculateHourlyWithOvertime(t *testing.T) {
	a := Calculate(Input{
		PayType:            models.PayTypeHourly,
		HourlyRate:         d("20.00"),
		TotalHours:         d("160"),
		OvertimeHours:      d("10"),
		OvertimeMultiplier: d("1.25"),
	})

	assert.Equal(t, "3200.00", a.BasePay.StringFixed(2))
	assert.Equal(t, "25.00", a.OvertimeRate.StringFixed(2))
	assert.Equal(t, "250.00", a.OvertimePay.StringFixed(2))
	assert.Equal(t, "3450.00", a.GrossPay.StringFixed(2))
	assert.Equal(t, "0.00", a.TotalDeductions.StringFixed(2))
	assert.Equal(t, "3450.00", a.NetPay.StringFixed(2))
}

func TestCalculateSalaryWithTax(t *testing.T) {
	a := Calculate(Input{
		PayType:            models.PayTypeSalary,
		SalaryMonthly:      d("5000.00"),
		TotalHours:         d("12"),
		OvertimeMultiplier: d("1.25"),
		TaxRate:            d("0.10"),
	})

	assert.Equal(t, models.PayTypeSalary, a.PayType)
	assert.Equal(t, "5000.00", a.BasePay.StringFixed(2))
	assert.Equal(t, "5000.00", a.GrossPay.StringFixed(2))
	assert.Equal(t, "500.00", a.TaxAmount.StringFixed(2))
	assert.Equal(t, "4500.00", a.NetPay.StringFixed(2))
}

func TestCalculateSalariedOvertimeUsesHourlyRate(t *testing.T) {
	a := Calculate(Input{
		PayType:            models.PayTypeSalary,
		SalaryMonthly:      d("4000"),
		HourlyRate:         d("30"),
		OvertimeHours:      d("2"),
		OvertimeMultiplier: d("1.5"),
	})

	assert.Equal(t, "45.00", a.OvertimeRate.StringFixed(2))
	assert.Equal(t, "90.00", a.OvertimePay.StringFixed(2))
	assert.Equal(t, "4090.00", a.GrossPay.StringFixed(2))
}

func TestCalculateNoHourlyRateMeansNoOvertime(t *testing.T) {
	a := Calculate(Input{
		PayType:            models.PayTypeSalary,
		SalaryMonthly:      d("4000"),
		OvertimeHours:      d("8"),
		OvertimeMultiplier: d("1.25"),
	})

	assert.True(t, a.OvertimeRate.IsZero())
	assert.True(t, a.OvertimePay.IsZero())
	assert.Equal(t, "4000.00", a.GrossPay.StringFixed(2))
}

func TestCalculateUnknownPayTypeIsHourly(t *testing.T) {
	a := Calculate(Input{
		PayType:       "weekly",
		HourlyRate:    d("10"),
		SalaryMonthly: d("9999"),
		TotalHours:    d("3.5"),
	})

	assert.Equal(t, models.PayTypeHourly, a.PayType)
	assert.Equal(t, "35.00", a.BasePay.StringFixed(2))
}

func TestCalculateDeductionsAreNotCascaded(t *testing.T) {
	a := Calculate(Input{
		PayType:             models.PayTypeSalary,
		SalaryMonthly:       d("1000"),
		BonusAmount:         d("100"),
		AllowanceAmount:     d("50"),
		TaxRate:             d("0.10"),
		SocialRate:          d("0.05"),
		PensionRate:         d("0.07"),
		OtherRate:           d("0.01"),
		EmployerSocialRate:  d("0.05"),
		EmployerPensionRate: d("0.07"),
		EmployerOtherRate:   d("0.02"),
	})

	assert.Equal(t, "1150.00", a.GrossPay.StringFixed(2))
	assert.Equal(t, "115.00", a.TaxAmount.StringFixed(2))
	assert.Equal(t, "57.50", a.SocialAmount.StringFixed(2))
	assert.Equal(t, "80.50", a.PensionAmount.StringFixed(2))
	assert.Equal(t, "11.50", a.OtherDeductionAmount.StringFixed(2))
	assert.Equal(t, "264.50", a.TotalDeductions.StringFixed(2))
	assert.Equal(t, "885.50", a.NetPay.StringFixed(2))

	// employer side never reduces net pay
	assert.Equal(t, "57.50", a.EmployerSocialAmount.StringFixed(2))
	assert.Equal(t, "80.50", a.EmployerPensionAmount.StringFixed(2))
	assert.Equal(t, "23.00", a.EmployerOtherAmount.StringFixed(2))
}

func TestCalculateNetPayCanBeNegative(t *testing.T) {
	a := Calculate(Input{
		PayType:       models.PayTypeSalary,
		SalaryMonthly: d("1000"),
		TaxRate:       d("0.8"),
		SocialRate:    d("0.5"),
	})

	assert.Equal(t, "1300.00", a.TotalDeductions.StringFixed(2))
	assert.Equal(t, "-300.00", a.NetPay.StringFixed(2))
	assert.True(t, a.NetPay.IsNegative())
}

func TestCalculateRoundsFromUnroundedIntermediates(t *testing.T) {
	// 2h20m at 10.00 is 23.333.., net is taken from the unrounded gross.
	a := Calculate(Input{
		PayType:    models.PayTypeHourly,
		HourlyRate: d("10"),
		TotalHours: SecondsToHours(7 * 1200),
		TaxRate:    d("0.15"),
	})

	assert.Equal(t, "23.33", a.BasePay.StringFixed(2))
	assert.Equal(t, "23.33", a.GrossPay.StringFixed(2))
	assert.Equal(t, "3.50", a.TaxAmount.StringFixed(2))
	assert.Equal(t, "19.83", a.NetPay.StringFixed(2))
}

func TestCalculateIsPureAndFixedUnderRounding(t *testing.T) {
	in := Input{
		PayType:             models.PayTypeHourly,
		HourlyRate:          d("27.35"),
		TotalHours:          d("151.37"),
		OvertimeHours:       d("3.25"),
		OvertimeMultiplier:  d("1.25"),
		BonusAmount:         d("120.10"),
		AllowanceAmount:     d("33.33"),
		TaxRate:             d("0.1234"),
		SocialRate:          d("0.0525"),
		PensionRate:         d("0.0700"),
		OtherRate:           d("0.0031"),
		EmployerSocialRate:  d("0.0525"),
		EmployerPensionRate: d("0.0800"),
		EmployerOtherRate:   d("0.0110"),
	}

	first := Calculate(in)
	second := Calculate(in)
	assert.Equal(t, first, second)

	fields := []decimal.Decimal{
		first.BasePay, first.OvertimeRate, first.OvertimePay, first.GrossPay,
		first.TaxAmount, first.SocialAmount, first.PensionAmount, first.OtherDeductionAmount,
		first.TotalDeductions, first.NetPay,
		first.EmployerSocialAmount, first.EmployerPensionAmount, first.EmployerOtherAmount,
	}
	for _, f := range fields {
		assert.True(t, f.Equal(RoundMoney(f)), "%s is not a cent amount", f)
	}

	assert.True(t, first.BasePay.Equal(RoundMoney(in.HourlyRate.Mul(in.TotalHours))))
}

func TestInputFromUserDefaults(t *testing.T) {
	in := InputFromUser(models.User{PayType: "bogus"})

	assert.Equal(t, models.PayTypeHourly, in.PayType)
	assert.True(t, in.HourlyRate.IsZero())
	assert.Equal(t, "1.25", in.OvertimeMultiplier.String())
	assert.True(t, in.TaxRate.IsZero())
}
