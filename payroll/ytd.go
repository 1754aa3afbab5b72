package payroll

import (
	"github.com/shopspring/decimal"

	"timetracking/models"
)

// YearToDate holds per-field sums over the saved paychecks of one year.
type YearToDate struct {
	BasePay         decimal.Decimal `json:"ytd_base_pay"`
	OvertimePay     decimal.Decimal `json:"ytd_overtime_pay"`
	Bonus           decimal.Decimal `json:"ytd_bonus"`
	Allowance       decimal.Decimal `json:"ytd_allowance"`
	Gross           decimal.Decimal `json:"ytd_gross"`
	Tax             decimal.Decimal `json:"ytd_tax"`
	Social          decimal.Decimal `json:"ytd_social"`
	Pension         decimal.Decimal `json:"ytd_pension"`
	Other           decimal.Decimal `json:"ytd_other"`
	TotalDeductions decimal.Decimal `json:"ytd_deductions"`
	Net             decimal.Decimal `json:"ytd_net"`
	Hours           decimal.Decimal `json:"ytd_hours"`
}

// SumYearToDate folds saved paychecks only. A month without a saved
// paycheck contributes nothing, even if sessions exist for it.
func SumYearToDate(paychecks []models.Paycheck) YearToDate {
	var y YearToDate
	for _, p := range paychecks {
		y.BasePay = y.BasePay.Add(p.BasePay)
		y.OvertimePay = y.OvertimePay.Add(p.OvertimePay)
		y.Bonus = y.Bonus.Add(p.BonusAmount)
		y.Allowance = y.Allowance.Add(p.AllowanceAmount)
		y.Gross = y.Gross.Add(p.GrossPay)
		y.Tax = y.Tax.Add(p.TaxAmount)
		y.Social = y.Social.Add(p.SocialAmount)
		y.Pension = y.Pension.Add(p.PensionAmount)
		y.Other = y.Other.Add(p.OtherDeductionAmount)
		y.TotalDeductions = y.TotalDeductions.Add(p.TotalDeductions)
		y.Net = y.Net.Add(p.NetPay)
		y.Hours = y.Hours.Add(p.TotalHours)
	}
	return y
}
