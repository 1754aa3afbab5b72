// Package export builds spreadsheets for payroll accounting.
package export

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"timetracking/payroll"
)

// Row is one employee's line in the period workbook.
type Row struct {
	Login   string
	Name    string
	Status  string
	PayType string
	Hours   decimal.Decimal
	Amounts payroll.Amounts
}

var header = []interface{}{
	"Login", "Name", "Status", "Pay type", "Hours",
	"Base pay", "Overtime pay", "Gross pay", "Deductions", "Net pay",
	"Employer social", "Employer pension", "Employer other",
}

func SheetName(p payroll.Period) string {
	return "Payroll " + p.String()
}

// PeriodWorkbook returns an .xlsx file with one sheet for the period.
// Amounts are written as fixed two digit strings so they match the
// statements exactly.
func PeriodWorkbook(p payroll.Period, rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(p)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return nil, err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		a := r.Amounts
		values := []interface{}{
			r.Login, r.Name, r.Status, r.PayType, fixed(r.Hours),
			fixed(a.BasePay), fixed(a.OvertimePay), fixed(a.GrossPay), fixed(a.TotalDeductions), fixed(a.NetPay),
			fixed(a.EmployerSocialAmount), fixed(a.EmployerPensionAmount), fixed(a.EmployerOtherAmount),
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(sheet, "A", "M", 16); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func FileName(p payroll.Period) string {
	return fmt.Sprintf("payroll_%s.xlsx", p)
}

func fixed(d decimal.Decimal) string {
	return payroll.RoundMoney(d).StringFixed(2)
}
