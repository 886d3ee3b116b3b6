package attendance

import "time"

const (
	StatusOnTime = "on_time"
	StatusLate   = "late"
	StatusAbsent = "absent"
)

// lateCutoff is the local wall-clock time after which a check-in counts as
// late.
var lateCutoff = clock{hour: 9, minute: 30}

type clock struct {
	hour, minute int
}

type Record struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employeeId"`
	Date       time.Time  `json:"date"`
	CheckIn    *time.Time `json:"checkIn,omitempty"`
	CheckOut   *time.Time `json:"checkOut,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Status derives the day's attendance state from the check-in time.
func (r Record) Status() string {
	if r.CheckIn == nil {
		return StatusAbsent
	}
	in := *r.CheckIn
	if in.Hour() > lateCutoff.hour ||
		(in.Hour() == lateCutoff.hour && in.Minute() > lateCutoff.minute) {
		return StatusLate
	}
	return StatusOnTime
}

// WorkedHours is the span between check-in and check-out, zero while either
// end is missing.
func (r Record) WorkedHours() time.Duration {
	if r.CheckIn == nil || r.CheckOut == nil {
		return 0
	}
	if r.CheckOut.Before(*r.CheckIn) {
		return 0
	}
	return r.CheckOut.Sub(*r.CheckIn)
}

type RecordFilter struct {
	EmployeeID string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}
