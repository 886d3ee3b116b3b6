package leave

import "time"

const probationMonths = 3

// ProbationEndDate returns joining + 3 months with the day-of-month clamped
// to the last valid day of the target month, so Jan 31 ends Apr 30 and
// Nov 30 ends Feb 28 (or 29).
func ProbationEndDate(joining time.Time) time.Time {
	year := joining.Year()
	month := int(joining.Month()) + probationMonths
	if month > 12 {
		year++
		month -= 12
	}

	day := joining.Day()
	if last := lastDayOfMonth(year, time.Month(month)); day > last {
		day = last
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// OnProbation reports whether today falls inside the probation window.
// The end date itself still counts as probation.
func OnProbation(probationEnd time.Time, today time.Time) bool {
	return !dateOnly(today).After(dateOnly(probationEnd))
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
