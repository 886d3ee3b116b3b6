package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusNew      = "new"
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	HalfDayFirst  = "first_half"
	HalfDaySecond = "second_half"
)

type Region struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

type Holiday struct {
	ID         string    `json:"id"`
	RegionID   string    `json:"regionId"`
	Name       string    `json:"name"`
	Date       time.Time `json:"date"`
	IsOptional bool      `json:"isOptional"`
	CreatedAt  time.Time `json:"createdAt"`
}

// LeaveType is the persisted mirror of the in-code policy table. Exactly one
// active row exists per kind; rows are written at seed time and read back for
// administration and reporting.
type LeaveType struct {
	ID              string          `json:"id"`
	Kind            Kind            `json:"kind"`
	MaxDays         int             `json:"maxDays"`
	AccrualRate     decimal.Decimal `json:"accrualRate"`
	IsOptional      bool            `json:"isOptional"`
	MaxCarryForward int             `json:"maxCarryForward"`
	CanUseSameMonth bool            `json:"canUseSameMonth"`
	IsActive        bool            `json:"isActive"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Balance is the ledger row, unique per (employee, kind, year).
// Remaining == Total - Taken holds after every mutation.
type Balance struct {
	ID           string          `json:"id"`
	EmployeeID   string          `json:"employeeId"`
	Kind         Kind            `json:"kind"`
	Year         int             `json:"year"`
	Total        decimal.Decimal `json:"totalLeaves"`
	Taken        decimal.Decimal `json:"leavesTaken"`
	Remaining    decimal.Decimal `json:"leavesRemaining"`
	CarryForward decimal.Decimal `json:"carryForward"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type Request struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employeeId"`
	Kind            Kind            `json:"kind"`
	StartDate       time.Time       `json:"startDate"`
	EndDate         time.Time       `json:"endDate"`
	Days            decimal.Decimal `json:"daysRequested"`
	IsHalfDay       bool            `json:"isHalfDay"`
	HalfDayPeriod   string          `json:"halfDayPeriod,omitempty"`
	Reason          string          `json:"reason"`
	Status          string          `json:"status"`
	AppliedAt       time.Time       `json:"appliedAt"`
	ApprovedBy      string          `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time      `json:"approvedAt,omitempty"`
	RejectionReason string          `json:"rejectionReason,omitempty"`
}

// EmployeeInfo is the slice of the employee record the engine reads. The HR
// subsystem owns the full record; probation_end_date is the one field the
// engine writes back.
type EmployeeInfo struct {
	ID               string
	DateOfJoining    *time.Time
	Location         string
	ProbationEndDate *time.Time
}

type RequestFilter struct {
	EmployeeID string
	Status     string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

func terminal(status string) bool {
	return status == StatusApproved || status == StatusRejected
}
