package hr

import "time"

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Employee struct {
	ID               string     `json:"id"`
	FirstName        string     `json:"firstName"`
	LastName         string     `json:"lastName"`
	Email            string     `json:"email"`
	Designation      string     `json:"designation,omitempty"`
	DateOfJoining    *time.Time `json:"dateOfJoining,omitempty"`
	Location         string     `json:"location,omitempty"`
	Status           string     `json:"status"`
	ProbationEndDate *time.Time `json:"probationEndDate,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

type EmployeeFilter struct {
	Status   string
	Location string
	Limit    int
	Offset   int
}
