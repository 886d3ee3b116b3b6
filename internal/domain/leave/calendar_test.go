package leave

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWorkingDays(t *testing.T) {
	wednesday := date(2025, time.June, 4)

	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		holidays HolidaySet
		want     string
	}{
		{
			name:  "full working week",
			start: date(2025, time.June, 2),
			end:   date(2025, time.June, 6),
			want:  "5",
		},
		{
			name:     "midweek holiday excluded",
			start:    date(2025, time.June, 2),
			end:      date(2025, time.June, 6),
			holidays: NewHolidaySet([]Holiday{{Date: wednesday}}),
			want:     "4",
		},
		{
			name:  "weekend only",
			start: date(2025, time.June, 7),
			end:   date(2025, time.June, 8),
			want:  "0",
		},
		{
			name:  "span across weekend",
			start: date(2025, time.June, 2),
			end:   date(2025, time.June, 9),
			want:  "6",
		},
		{
			name:  "single day",
			start: date(2025, time.June, 3),
			end:   date(2025, time.June, 3),
			want:  "1",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			holidays := tc.holidays
			if holidays == nil {
				holidays = HolidaySet{}
			}
			got, err := WorkingDays(tc.start, tc.end, holidays)
			if err != nil {
				t.Fatalf("WorkingDays returned error: %v", err)
			}
			if got.String() != tc.want {
				t.Fatalf("WorkingDays = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestWorkingDaysEndBeforeStart(t *testing.T) {
	_, err := WorkingDays(date(2025, time.June, 6), date(2025, time.June, 2), HolidaySet{})
	if err == nil {
		t.Fatal("expected error for end before start")
	}
}

func TestRequestDaysHalfDay(t *testing.T) {
	// A half day is exactly 0.5 even when the date is a weekend or holiday.
	got, err := RequestDays(date(2025, time.June, 7), date(2025, time.June, 7), true, HolidaySet{})
	if err != nil {
		t.Fatalf("RequestDays returned error: %v", err)
	}
	if got.String() != "0.5" {
		t.Fatalf("RequestDays = %s, want 0.5", got)
	}
}

func TestRequestDaysFullRange(t *testing.T) {
	got, err := RequestDays(date(2025, time.June, 2), date(2025, time.June, 6), false, HolidaySet{})
	if err != nil {
		t.Fatalf("RequestDays returned error: %v", err)
	}
	if got.String() != "5" {
		t.Fatalf("RequestDays = %s, want 5", got)
	}
}
