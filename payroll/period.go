package payroll

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PayDay is the fixed day of month on which a period is paid out.
const PayDay = 25

// Period is one calendar month.
type Period struct {
	Year  int
	Month int
}

// ParseMonth accepts "YYYY-MM". Malformed values and months outside 1..12
// are rejected.
func ParseMonth(raw string) (Period, bool) {
	yearPart, monthPart, found := strings.Cut(strings.TrimSpace(raw), "-")
	if !found {
		return Period{}, false
	}
	year, err := strconv.Atoi(yearPart)
	if err != nil {
		return Period{}, false
	}
	month, err := strconv.Atoi(monthPart)
	if err != nil {
		return Period{}, false
	}
	if month < 1 || month > 12 || year < 1 {
		return Period{}, false
	}
	return Period{Year: year, Month: month}, true
}

func CurrentPeriod(now time.Time) Period {
	now = now.UTC()
	return Period{Year: now.Year(), Month: int(now.Month())}
}

// PeriodOrCurrent treats an invalid selector as "no filter".
func PeriodOrCurrent(raw string, now time.Time) Period {
	if p, ok := ParseMonth(raw); ok {
		return p
	}
	return CurrentPeriod(now)
}

// Range returns [first day of month, first day of next month) in UTC.
func (p Period) Range() (time.Time, time.Time) {
	start := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

func (p Period) FirstDay() time.Time {
	start, _ := p.Range()
	return start
}

func (p Period) LastDay() time.Time {
	_, end := p.Range()
	return end.AddDate(0, 0, -1)
}

func (p Period) PayDate() time.Time {
	return time.Date(p.Year, time.Month(p.Month), PayDay, 0, 0, 0, 0, time.UTC)
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}
