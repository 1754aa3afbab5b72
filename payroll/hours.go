package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"timetracking/models"
)

// Span is the part of a clock session the hours aggregator looks at.
type Span struct {
	Start time.Time
	End   *time.Time
}

// SpansOf adapts stored sessions.
func SpansOf(sessions []models.Session) []Span {
	spans := make([]Span, len(sessions))
	for i, s := range sessions {
		spans[i] = Span{Start: s.StartTime, End: s.EndTime}
	}
	return spans
}

// TotalSeconds sums elapsed whole seconds. Open spans run until now and
// spans ending before they start count as zero.
func TotalSeconds(spans []Span, now time.Time) int64 {
	var total int64
	for _, s := range spans {
		end := now
		if s.End != nil {
			end = *s.End
		}
		if end.Before(s.Start) {
			continue
		}
		total += int64(end.Sub(s.Start) / time.Second)
	}
	return total
}

// ClosedSeconds is TotalSeconds without open spans. Finalized paychecks
// only count sessions that have ended.
func ClosedSeconds(spans []Span) int64 {
	closed := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.End != nil {
			closed = append(closed, s)
		}
	}
	return TotalSeconds(closed, time.Time{})
}

// SecondsToHours is unrounded; round with RoundHours where needed.
func SecondsToHours(seconds int64) decimal.Decimal {
	return decimal.NewFromInt(seconds).Div(secondsPerHour)
}

// FormatDuration renders "7h 05m".
func FormatDuration(seconds int64) string {
	return fmt.Sprintf("%dh %02dm", seconds/3600, (seconds%3600)/60)
}
