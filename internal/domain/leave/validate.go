package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ValidateLeaveApplication checks a proposed leave against probation,
// optional-leave caps and the ledger balance. Errors block creation and
// approval; warnings are advisory. The same checks run again at approval
// time because the balance may have moved since submission.
func (s *Service) ValidateLeaveApplication(ctx context.Context, employeeID string, kind Kind, start, end time.Time, days decimal.Decimal) (bool, []string, []string, error) {
	var errs, warnings []string

	policy, ok := PolicyFor(kind)
	if !ok {
		return false, nil, nil, fmt.Errorf("%w: leave kind %q", ErrNotFound, kind)
	}
	if end.Before(start) {
		errs = append(errs, "end date is before start date")
	}
	if !days.IsPositive() {
		errs = append(errs, "days requested must be greater than zero")
	}
	if len(errs) > 0 {
		return false, errs, warnings, nil
	}

	employee, err := s.Store.GetEmployee(ctx, employeeID)
	if err != nil {
		return false, nil, nil, err
	}

	now := s.now()
	year := start.Year()

	probationEnd, err := s.EnsureProbationEndDate(ctx, &employee)
	if err != nil {
		return false, nil, nil, err
	}
	if probationEnd != nil && OnProbation(*probationEnd, now) && !policy.AllowedDuringProbation {
		errs = append(errs, "leave not allowed during probation period (first 3 months)")
	}

	if policy.IsOptional {
		errs = append(errs, s.optionalLeaveErrors(ctx, employeeID, policy, days, year)...)
	}

	balance, err := s.Store.GetBalance(ctx, employeeID, kind, year)
	switch {
	case errors.Is(err, ErrBalanceNotFound):
		errs = append(errs, fmt.Sprintf("no %s leave balance found for %d", kind, year))
	case err != nil:
		return false, nil, nil, err
	case balance.Remaining.LessThan(days):
		errs = append(errs, fmt.Sprintf("insufficient %s balance: available %s, requested %s", kind, balance.Remaining, days))
	}

	if kind == KindAnnual && !policy.CanUseSameMonth &&
		start.Year() == now.Year() && start.Month() == now.Month() {
		warnings = append(warnings, "leave starts in the current accrual month")
	}

	return len(errs) == 0, errs, warnings, nil
}

// optionalLeaveErrors enforces the hard usable cap: 4 days are allocated per
// year but at most 2 may ever be spent.
func (s *Service) optionalLeaveErrors(ctx context.Context, employeeID string, policy Policy, days decimal.Decimal, year int) []string {
	balance, err := s.Store.GetBalance(ctx, employeeID, policy.Kind, year)
	if err != nil {
		// The missing-balance error is reported by the general balance check.
		return nil
	}

	usable := policy.OptionalUsableCap
	if balance.Taken.GreaterThanOrEqual(usable) {
		return []string{fmt.Sprintf("maximum %s optional leaves allowed per year", usable)}
	}
	quota := usable.Sub(balance.Taken)
	if days.GreaterThan(quota) {
		return []string{fmt.Sprintf("can only use %s more optional leave days this year", quota)}
	}
	if days.GreaterThan(balance.Remaining) {
		return []string{fmt.Sprintf("insufficient optional leave balance: available %s", balance.Remaining)}
	}
	return nil
}

// EnsureProbationEndDate returns the employee's probation end date, computing
// and persisting it from the joining date when unset. The write is the one
// mutation the engine performs on the employee record; re-running it is a
// no-op.
func (s *Service) EnsureProbationEndDate(ctx context.Context, employee *EmployeeInfo) (*time.Time, error) {
	if employee.ProbationEndDate != nil {
		return employee.ProbationEndDate, nil
	}
	if employee.DateOfJoining == nil {
		return nil, nil
	}

	end := ProbationEndDate(*employee.DateOfJoining)
	if err := s.Store.SetProbationEndDate(ctx, employee.ID, end); err != nil {
		return nil, err
	}
	employee.ProbationEndDate = &end
	return &end, nil
}
