package leave

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

type BatchFailure struct {
	EmployeeID string `json:"employeeId"`
	Reason     string `json:"reason"`
}

type AccrualSummary struct {
	Year     int            `json:"year"`
	Month    time.Month     `json:"month"`
	Ran      bool           `json:"ran"`
	Accrued  int            `json:"accrued"`
	Skipped  int            `json:"skipped"`
	Failures []BatchFailure `json:"failures,omitempty"`
}

// RunMonthlyAccrual grants the monthly annual-leave entitlement to every
// active employee. It is designed to be invoked daily by a scheduler: it
// acts only on the 1st of the month, and the per-employee month marker
// inside AccrueMonthlyTx makes repeat invocations no-ops. Each employee is
// processed in its own transaction, so one failure never corrupts or aborts
// the rest of the batch.
func (s *Service) RunMonthlyAccrual(ctx context.Context, asOf time.Time) (AccrualSummary, error) {
	summary := AccrualSummary{Year: asOf.Year(), Month: asOf.Month()}
	if asOf.Day() != 1 {
		return summary, nil
	}
	summary.Ran = true

	policy, _ := PolicyFor(KindAnnual)

	employees, err := s.Store.ListActiveEmployees(ctx)
	if err != nil {
		return summary, err
	}

	for _, employee := range employees {
		amount := monthlyAccrualFor(employee, policy, asOf)
		if amount.IsZero() {
			summary.Skipped++
			continue
		}

		applied, err := s.Store.AccrueMonthlyTx(ctx, employee.ID, KindAnnual, asOf.Year(), asOf.Month(), amount)
		if err != nil {
			slog.Warn("monthly accrual failed", "employeeId", employee.ID, "err", err)
			summary.Failures = append(summary.Failures, BatchFailure{EmployeeID: employee.ID, Reason: err.Error()})
			continue
		}
		if !applied {
			summary.Skipped++
			continue
		}
		summary.Accrued++
	}

	slog.Info("monthly accrual run finished",
		"year", summary.Year, "month", int(summary.Month),
		"accrued", summary.Accrued, "skipped", summary.Skipped, "failures", len(summary.Failures))
	return summary, nil
}

// monthlyAccrualFor returns the entitlement one employee earns for the month
// containing asOf: zero while on probation, and zero for the joining month
// when the employee joined after the 1st.
func monthlyAccrualFor(employee EmployeeInfo, policy Policy, asOf time.Time) decimal.Decimal {
	probationEnd := employee.ProbationEndDate
	if probationEnd == nil && employee.DateOfJoining != nil {
		end := ProbationEndDate(*employee.DateOfJoining)
		probationEnd = &end
	}
	if probationEnd != nil && OnProbation(*probationEnd, asOf) {
		return decimal.Zero
	}

	if joining := employee.DateOfJoining; joining != nil {
		if joining.Day() > 1 && joining.Month() == asOf.Month() && joining.Year() == asOf.Year() {
			return decimal.Zero
		}
	}

	return policy.MonthlyAccrual
}
