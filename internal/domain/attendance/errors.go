package attendance

import "errors"

var (
	ErrNotFound          = errors.New("attendance record not found")
	ErrForbidden         = errors.New("operation not permitted")
	ErrAlreadyCheckedIn  = errors.New("already checked in for this date")
	ErrNotCheckedIn      = errors.New("no check-in recorded for this date")
	ErrAlreadyCheckedOut = errors.New("already checked out for this date")
)
