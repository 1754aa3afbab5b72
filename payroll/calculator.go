// Package payroll turns clock sessions and an employee's pay configuration
// into a monetary breakdown. Every function here is pure; nothing returns an
// error, so a statement can always be rendered even with incomplete data.
package payroll

import (
	"github.com/shopspring/decimal"

	"timetracking/models"
)

// Input carries every value the calculator needs. Absent values are zero.
type Input struct {
	PayType            string
	HourlyRate         decimal.Decimal
	SalaryMonthly      decimal.Decimal
	TotalHours         decimal.Decimal
	OvertimeHours      decimal.Decimal
	OvertimeMultiplier decimal.Decimal
	BonusAmount        decimal.Decimal
	AllowanceAmount    decimal.Decimal

	TaxRate     decimal.Decimal
	SocialRate  decimal.Decimal
	PensionRate decimal.Decimal
	OtherRate   decimal.Decimal

	EmployerSocialRate  decimal.Decimal
	EmployerPensionRate decimal.Decimal
	EmployerOtherRate   decimal.Decimal
}

// Amounts is the rounded result. Employer amounts are informational and
// never part of NetPay.
type Amounts struct {
	PayType              string          `json:"pay_type"`
	BasePay              decimal.Decimal `json:"base_pay"`
	OvertimeRate         decimal.Decimal `json:"overtime_rate"`
	OvertimePay          decimal.Decimal `json:"overtime_pay"`
	GrossPay             decimal.Decimal `json:"gross_pay"`
	TaxAmount            decimal.Decimal `json:"tax_amount"`
	SocialAmount         decimal.Decimal `json:"social_amount"`
	PensionAmount        decimal.Decimal `json:"pension_amount"`
	OtherDeductionAmount decimal.Decimal `json:"other_deduction_amount"`
	TotalDeductions      decimal.Decimal `json:"total_deductions"`
	NetPay               decimal.Decimal `json:"net_pay"`

	EmployerSocialAmount  decimal.Decimal `json:"employer_social_amount"`
	EmployerPensionAmount decimal.Decimal `json:"employer_pension_amount"`
	EmployerOtherAmount   decimal.Decimal `json:"employer_other_amount"`
}

// NormalizePayType maps anything unknown to hourly.
func NormalizePayType(v string) string {
	if v == models.PayTypeHourly || v == models.PayTypeSalary {
		return v
	}
	return models.PayTypeHourly
}

// Calculate computes the breakdown in a fixed order. Intermediates stay
// unrounded; only the returned fields are rounded to cents. Deductions are
// each taken off the same gross, not cascaded, and net pay is allowed to
// go negative.
func Calculate(in Input) Amounts {
	payType := NormalizePayType(in.PayType)

	basePay := in.HourlyRate.Mul(in.TotalHours)
	if payType == models.PayTypeSalary {
		basePay = in.SalaryMonthly
	}

	// Not gated by pay type: salaried staff with an hourly rate still earn overtime.
	overtimeRate := decimal.Zero
	if in.HourlyRate.IsPositive() {
		overtimeRate = in.HourlyRate.Mul(in.OvertimeMultiplier)
	}
	overtimePay := in.OvertimeHours.Mul(overtimeRate)
	grossPay := basePay.Add(overtimePay).Add(in.BonusAmount).Add(in.AllowanceAmount)

	taxAmount := grossPay.Mul(in.TaxRate)
	socialAmount := grossPay.Mul(in.SocialRate)
	pensionAmount := grossPay.Mul(in.PensionRate)
	otherAmount := grossPay.Mul(in.OtherRate)

	totalDeductions := taxAmount.Add(socialAmount).Add(pensionAmount).Add(otherAmount)
	netPay := grossPay.Sub(totalDeductions)

	return Amounts{
		PayType:              payType,
		BasePay:              RoundMoney(basePay),
		OvertimeRate:         RoundMoney(overtimeRate),
		OvertimePay:          RoundMoney(overtimePay),
		GrossPay:             RoundMoney(grossPay),
		TaxAmount:            RoundMoney(taxAmount),
		SocialAmount:         RoundMoney(socialAmount),
		PensionAmount:        RoundMoney(pensionAmount),
		OtherDeductionAmount: RoundMoney(otherAmount),
		TotalDeductions:      RoundMoney(totalDeductions),
		NetPay:               RoundMoney(netPay),

		EmployerSocialAmount:  RoundMoney(grossPay.Mul(in.EmployerSocialRate)),
		EmployerPensionAmount: RoundMoney(grossPay.Mul(in.EmployerPensionRate)),
		EmployerOtherAmount:   RoundMoney(grossPay.Mul(in.EmployerOtherRate)),
	}
}

// InputFromUser loads the configuration part of an Input from the
// employee's current settings. Hours and adjustments are left to the caller.
func InputFromUser(u models.User) Input {
	return Input{
		PayType:             NormalizePayType(u.PayType),
		HourlyRate:          Deref(u.HourlyRate),
		SalaryMonthly:       Deref(u.SalaryMonthly),
		OvertimeMultiplier:  DerefOr(u.OvertimeMultiplier, defaultMultiplier),
		TaxRate:             Deref(u.TaxRate),
		SocialRate:          Deref(u.SocialRate),
		PensionRate:         Deref(u.PensionRate),
		OtherRate:           Deref(u.OtherRate),
		EmployerSocialRate:  Deref(u.EmployerSocialRate),
		EmployerPensionRate: Deref(u.EmployerPensionRate),
		EmployerOtherRate:   Deref(u.EmployerOtherRate),
	}
}

// InputFromPaycheck reloads the frozen configuration and adjustments of a
// saved paycheck. TotalHours is taken from the snapshot as well.
func InputFromPaycheck(p models.Paycheck) Input {
	return Input{
		PayType:             NormalizePayType(p.PayType),
		HourlyRate:          p.HourlyRate,
		SalaryMonthly:       p.SalaryMonthly,
		TotalHours:          p.TotalHours,
		OvertimeHours:       p.OvertimeHours,
		OvertimeMultiplier:  p.OvertimeMultiplier,
		BonusAmount:         p.BonusAmount,
		AllowanceAmount:     p.AllowanceAmount,
		TaxRate:             p.TaxRate,
		SocialRate:          p.SocialRate,
		PensionRate:         p.PensionRate,
		OtherRate:           p.OtherRate,
		EmployerSocialRate:  p.EmployerSocialRate,
		EmployerPensionRate: p.EmployerPensionRate,
		EmployerOtherRate:   p.EmployerOtherRate,
	}
}
