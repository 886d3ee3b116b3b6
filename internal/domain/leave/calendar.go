package leave

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// HolidaySet indexes holiday dates for O(1) membership checks.
type HolidaySet map[string]struct{}

func NewHolidaySet(holidays []Holiday) HolidaySet {
	set := make(HolidaySet, len(holidays))
	for _, h := range holidays {
		set.Add(h.Date)
	}
	return set
}

func (s HolidaySet) Add(date time.Time) {
	s[date.Format(dateLayout)] = struct{}{}
}

func (s HolidaySet) Contains(date time.Time) bool {
	_, ok := s[date.Format(dateLayout)]
	return ok
}

// WorkingDays counts Mon-Fri dates in [start, end] inclusive that are not in
// the holiday set. There is one day-count path: callers that cannot resolve
// the employee's region pass an empty set, so every path agrees on weekend
// exclusion and differs only by the holidays supplied.
func WorkingDays(start, end time.Time, holidays HolidaySet) (decimal.Decimal, error) {
	if end.Before(start) {
		return decimal.Zero, errors.New("end date before start date")
	}

	days := 0
	for d := dateOnly(start); !d.After(dateOnly(end)); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		if holidays.Contains(d) {
			continue
		}
		days++
	}
	return decimal.NewFromInt(int64(days)), nil
}

// RequestDays resolves the day count of a leave application. Half-day
// requests are exactly 0.5 regardless of the range; everything else is the
// working-day count over the range.
func RequestDays(start, end time.Time, isHalfDay bool, holidays HolidaySet) (decimal.Decimal, error) {
	if isHalfDay {
		return decimal.RequireFromString("0.5"), nil
	}
	return WorkingDays(start, end, holidays)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
