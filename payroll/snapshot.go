package payroll

import (
	"github.com/shopspring/decimal"

	"timetracking/models"
)

// Adjustments are the per-period values an administrator enters when
// saving a paycheck.
type Adjustments struct {
	OvertimeHours   decimal.Decimal
	BonusAmount     decimal.Decimal
	AllowanceAmount decimal.Decimal
	PaymentMethod   string
	Status          string
}

// NormalizeStatus accepts draft and final, anything else is a draft.
func NormalizeStatus(v string) string {
	if v == models.PaycheckFinal {
		return models.PaycheckFinal
	}
	return models.PaycheckDraft
}

// Snapshot freezes the employee's current configuration for a period.
// Stored values are quantized the way they are persisted: money and hours
// to cents, rates to four digits. The overtime multiplier is kept as is.
func Snapshot(u models.User, p Period, totalHours decimal.Decimal, adj Adjustments) models.Paycheck {
	in := Input{
		PayType:             NormalizePayType(u.PayType),
		HourlyRate:          RoundMoney(Deref(u.HourlyRate)),
		SalaryMonthly:       RoundMoney(Deref(u.SalaryMonthly)),
		TotalHours:          RoundHours(totalHours),
		OvertimeHours:       RoundHours(adj.OvertimeHours),
		OvertimeMultiplier:  DerefOr(u.OvertimeMultiplier, defaultMultiplier),
		BonusAmount:         RoundMoney(adj.BonusAmount),
		AllowanceAmount:     RoundMoney(adj.AllowanceAmount),
		TaxRate:             RoundRate(Deref(u.TaxRate)),
		SocialRate:          RoundRate(Deref(u.SocialRate)),
		PensionRate:         RoundRate(Deref(u.PensionRate)),
		OtherRate:           RoundRate(Deref(u.OtherRate)),
		EmployerSocialRate:  RoundRate(Deref(u.EmployerSocialRate)),
		EmployerPensionRate: RoundRate(Deref(u.EmployerPensionRate)),
		EmployerOtherRate:   RoundRate(Deref(u.EmployerOtherRate)),
	}
	a := Calculate(in)

	method := adj.PaymentMethod
	if method == "" && u.PaymentMethod != nil {
		method = *u.PaymentMethod
	}
	if method == "" {
		method = models.DefaultPaymentMethod
	}

	return models.Paycheck{
		UserID:             u.ID,
		PeriodYear:         p.Year,
		PeriodMonth:        p.Month,
		PayDate:            p.PayDate(),
		PayType:            a.PayType,
		HourlyRate:         in.HourlyRate,
		SalaryMonthly:      in.SalaryMonthly,
		TotalHours:         in.TotalHours,
		OvertimeHours:      in.OvertimeHours,
		OvertimeMultiplier: in.OvertimeMultiplier,

		BasePay:         a.BasePay,
		OvertimePay:     a.OvertimePay,
		BonusAmount:     in.BonusAmount,
		AllowanceAmount: in.AllowanceAmount,
		GrossPay:        a.GrossPay,

		TaxRate:              in.TaxRate,
		SocialRate:           in.SocialRate,
		PensionRate:          in.PensionRate,
		OtherRate:            in.OtherRate,
		TaxAmount:            a.TaxAmount,
		SocialAmount:         a.SocialAmount,
		PensionAmount:        a.PensionAmount,
		OtherDeductionAmount: a.OtherDeductionAmount,
		TotalDeductions:      a.TotalDeductions,
		NetPay:               a.NetPay,

		EmployerSocialRate:    in.EmployerSocialRate,
		EmployerPensionRate:   in.EmployerPensionRate,
		EmployerOtherRate:     in.EmployerOtherRate,
		EmployerSocialAmount:  a.EmployerSocialAmount,
		EmployerPensionAmount: a.EmployerPensionAmount,
		EmployerOtherAmount:   a.EmployerOtherAmount,

		Status:        NormalizeStatus(adj.Status),
		PaymentMethod: method,
	}
}
