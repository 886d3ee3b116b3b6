package leave

import (
	"errors"
	"strings"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrBalanceNotFound = errors.New("leave balance not found")
	ErrInvalidState    = errors.New("invalid state")
	ErrForbidden       = errors.New("forbidden")
	ErrAlreadyExists   = errors.New("already exists")

	// ErrInsufficientBalance is returned when the remaining-balance guard
	// fails at commit time. Validation may have passed moments earlier;
	// callers must re-validate rather than retry the deduction.
	ErrInsufficientBalance = errors.New("insufficient leave balance")
)

// ValidationError carries the rule violations for a leave application.
// Warnings are advisory and never block on their own.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return "leave validation failed: " + strings.Join(e.Errors, "; ")
}
