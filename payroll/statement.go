package payroll

import (
	"github.com/shopspring/decimal"

	"timetracking/models"
)

const StatusPreview = "preview"

// Company is the employer block printed on every statement.
type Company struct {
	Name         string `json:"company_name"`
	TaxID        string `json:"company_tax_id"`
	AddressLine1 string `json:"company_address_line1"`
	AddressLine2 string `json:"company_address_line2"`
	Currency     string `json:"currency"`
}

// Statement is the display form of one period's payroll: every amount is
// already rounded and formatted.
type Statement struct {
	Company
	Status string `json:"status"`

	EmployeeName       string `json:"employee_name"`
	EmployeeID         string `json:"employee_id"`
	EmployeeDepartment string `json:"employee_department"`
	EmployeeRole       string `json:"employee_role"`
	EmployeeManager    string `json:"employee_manager"`

	PayPeriodStart string `json:"pay_period_start"`
	PayPeriodEnd   string `json:"pay_period_end"`
	PayDate        string `json:"pay_date"`
	PaymentMethod  string `json:"payment_method"`
	PayType        string `json:"pay_type"`

	HourlyRate      string `json:"hourly_rate"`
	SalaryMonthly   string `json:"salary_monthly"`
	TotalHours      string `json:"total_hours"`
	OvertimeHours   string `json:"overtime_hours"`
	OvertimeRate    string `json:"overtime_rate"`
	BasePay         string `json:"base_pay"`
	OvertimePay     string `json:"overtime_pay"`
	BonusAmount     string `json:"bonus_amount"`
	AllowanceAmount string `json:"allowance_amount"`
	GrossPay        string `json:"gross_pay"`

	TaxRate              string `json:"tax_rate"`
	SocialRate           string `json:"social_rate"`
	PensionRate          string `json:"pension_rate"`
	OtherRate            string `json:"other_rate"`
	TaxAmount            string `json:"tax_amount"`
	SocialAmount         string `json:"social_amount"`
	PensionAmount        string `json:"pension_amount"`
	OtherDeductionAmount string `json:"other_deduction_amount"`
	TotalDeductions      string `json:"total_deductions"`
	NetPay               string `json:"net_pay"`

	EmployerSocialRate    string `json:"employer_social_rate"`
	EmployerPensionRate   string `json:"employer_pension_rate"`
	EmployerOtherRate     string `json:"employer_other_rate"`
	EmployerSocialAmount  string `json:"employer_social_amount"`
	EmployerPensionAmount string `json:"employer_pension_amount"`
	EmployerOtherAmount   string `json:"employer_other_amount"`

	YTDBasePay     string `json:"ytd_base_pay"`
	YTDOvertimePay string `json:"ytd_overtime_pay"`
	YTDBonus       string `json:"ytd_bonus"`
	YTDAllowance   string `json:"ytd_allowance"`
	YTDGross       string `json:"ytd_gross"`
	YTDTax         string `json:"ytd_tax"`
	YTDSocial      string `json:"ytd_social"`
	YTDPension     string `json:"ytd_pension"`
	YTDOther       string `json:"ytd_other"`
	YTDDeductions  string `json:"ytd_deductions"`
	YTDNet         string `json:"ytd_net"`
	YTDHours       string `json:"ytd_hours"`

	// Amounts keeps the unformatted numbers for exports.
	Amounts Amounts `json:"-"`
}

// HoursFor prefers the hours frozen in a saved paycheck over the live total.
func HoursFor(p *models.Paycheck, liveSeconds int64) decimal.Decimal {
	if p != nil {
		return p.TotalHours
	}
	return SecondsToHours(liveSeconds)
}

// StatementInput groups what BuildStatement needs besides the calculator input.
type StatementInput struct {
	User        models.User
	ManagerName string
	Period      Period
	TotalHours  decimal.Decimal
	Paycheck    *models.Paycheck
	YTD         YearToDate
	Company     Company
}

// BuildStatement recomputes all monetary fields from the configuration in
// effect: the saved paycheck's snapshot if there is one, otherwise the
// employee's current settings. Adjustments (overtime, bonus, allowance)
// only exist on saved paychecks.
func BuildStatement(si StatementInput) Statement {
	var in Input
	if si.Paycheck != nil {
		in = InputFromPaycheck(*si.Paycheck)
	} else {
		in = InputFromUser(si.User)
	}
	in.TotalHours = si.TotalHours
	amounts := Calculate(in)

	status := StatusPreview
	method := ""
	if si.Paycheck != nil {
		status = si.Paycheck.Status
		method = si.Paycheck.PaymentMethod
	}
	if status == "" {
		status = StatusPreview
	}
	if method == "" && si.User.PaymentMethod != nil {
		method = *si.User.PaymentMethod
	}
	if method == "" {
		method = models.DefaultPaymentMethod
	}

	cur := si.Company.Currency
	money := func(d decimal.Decimal) string { return FormatCurrency(d, cur) }
	ytd := si.YTD

	return Statement{
		Company: si.Company,
		Status:  status,

		EmployeeName:       si.User.Name,
		EmployeeID:         si.User.LDAPUsername,
		EmployeeDepartment: orDash(si.User.Department),
		EmployeeRole:       orDash(si.User.RoleTitle),
		EmployeeManager:    orDash(&si.ManagerName),

		PayPeriodStart: FormatDate(si.Period.FirstDay()),
		PayPeriodEnd:   FormatDate(si.Period.LastDay()),
		PayDate:        FormatDate(si.Period.PayDate()),
		PaymentMethod:  method,
		PayType:        amounts.PayType,

		HourlyRate:      money(in.HourlyRate),
		SalaryMonthly:   money(in.SalaryMonthly),
		TotalHours:      FormatHours(in.TotalHours),
		OvertimeHours:   FormatHours(in.OvertimeHours),
		OvertimeRate:    money(amounts.OvertimeRate),
		BasePay:         money(amounts.BasePay),
		OvertimePay:     money(amounts.OvertimePay),
		BonusAmount:     money(in.BonusAmount),
		AllowanceAmount: money(in.AllowanceAmount),
		GrossPay:        money(amounts.GrossPay),

		TaxRate:              FormatRate(in.TaxRate),
		SocialRate:           FormatRate(in.SocialRate),
		PensionRate:          FormatRate(in.PensionRate),
		OtherRate:            FormatRate(in.OtherRate),
		TaxAmount:            money(amounts.TaxAmount),
		SocialAmount:         money(amounts.SocialAmount),
		PensionAmount:        money(amounts.PensionAmount),
		OtherDeductionAmount: money(amounts.OtherDeductionAmount),
		TotalDeductions:      money(amounts.TotalDeductions),
		NetPay:               money(amounts.NetPay),

		EmployerSocialRate:    FormatRate(in.EmployerSocialRate),
		EmployerPensionRate:   FormatRate(in.EmployerPensionRate),
		EmployerOtherRate:     FormatRate(in.EmployerOtherRate),
		EmployerSocialAmount:  money(amounts.EmployerSocialAmount),
		EmployerPensionAmount: money(amounts.EmployerPensionAmount),
		EmployerOtherAmount:   money(amounts.EmployerOtherAmount),

		YTDBasePay:     money(ytd.BasePay),
		YTDOvertimePay: money(ytd.OvertimePay),
		YTDBonus:       money(ytd.Bonus),
		YTDAllowance:   money(ytd.Allowance),
		YTDGross:       money(ytd.Gross),
		YTDTax:         money(ytd.Tax),
		YTDSocial:      money(ytd.Social),
		YTDPension:     money(ytd.Pension),
		YTDOther:       money(ytd.Other),
		YTDDeductions:  money(ytd.TotalDeductions),
		YTDNet:         money(ytd.Net),
		YTDHours:       FormatHours(ytd.Hours),

		Amounts: amounts,
	}
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
