// Package statement renders a payroll statement as a single page PDF.
package statement

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"timetracking/payroll"
)

const (
	topY     = 770
	leading  = 16
	fontSize = 12
	marginX  = 72
)

// Lines lays out the statement top to bottom. The result only depends on
// its arguments.
func Lines(st payroll.Statement, generatedAt time.Time) []string {
	return []string{
		"Payroll Statement",
		"Company: " + st.Name,
		"Tax ID: " + st.TaxID,
		fmt.Sprintf("Address: %s, %s", st.AddressLine1, st.AddressLine2),
		fmt.Sprintf("Employee: %s (%s)", st.EmployeeName, st.EmployeeID),
		fmt.Sprintf("Department: %s | Role: %s", st.EmployeeDepartment, st.EmployeeRole),
		fmt.Sprintf("Pay Period: %s to %s", st.PayPeriodStart, st.PayPeriodEnd),
		fmt.Sprintf("Pay Date: %s | Method: %s", st.PayDate, st.PaymentMethod),
		"Status: " + st.Status,
		" ",
		"Earnings",
		"Base Pay: " + st.BasePay,
		"Overtime: " + st.OvertimePay,
		"Bonus: " + st.BonusAmount,
		"Allowance: " + st.AllowanceAmount,
		"Gross Pay: " + st.GrossPay,
		" ",
		"Deductions",
		fmt.Sprintf("Tax (%s): %s", st.TaxRate, st.TaxAmount),
		fmt.Sprintf("Social (%s): %s", st.SocialRate, st.SocialAmount),
		fmt.Sprintf("Pension (%s): %s", st.PensionRate, st.PensionAmount),
		fmt.Sprintf("Other (%s): %s", st.OtherRate, st.OtherDeductionAmount),
		"Total Deductions: " + st.TotalDeductions,
		" ",
		"Net Pay: " + st.NetPay,
		fmt.Sprintf("YTD Gross: %s | YTD Net: %s", st.YTDGross, st.YTDNet),
		fmt.Sprintf("Generated: %s UTC", generatedAt.UTC().Format("2006-01-02 15:04")),
	}
}

// FileName is the download name, e.g. lohnabrechnung_amuster_2024-03.pdf.
func FileName(login string, p payroll.Period) string {
	return fmt.Sprintf("lohnabrechnung_%s_%s.pdf", login, p)
}

var escaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)

// latin1 replaces characters Helvetica's WinAnsi subset cannot show.
var latin1 = encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder())

// RenderPDF writes one page with one text line per entry. Lines that do not
// fit on the page are still emitted below the media box.
func RenderPDF(lines []string) []byte {
	ops := make([]string, len(lines))
	y := topY
	for i, line := range lines {
		ops[i] = fmt.Sprintf("1 0 0 1 %d %d Tm (%s) Tj", marginX, y, escaper.Replace(line))
		y -= leading
	}
	text := fmt.Sprintf("BT /F1 %d Tf %s ET", fontSize, strings.Join(ops, " "))
	// the replacing encoder does not fail
	content, _ := latin1.String(text)

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefStart := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefStart)
	return buf.Bytes()
}

// Render is Lines followed by RenderPDF.
func Render(st payroll.Statement, generatedAt time.Time) []byte {
	return RenderPDF(Lines(st, generatedAt))
}
