package leave

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"
)

type YearEndSummary struct {
	Year      int            `json:"year"`
	Processed int            `json:"processed"`
	Skipped   int            `json:"skipped"`
	Failures  []BatchFailure `json:"failures,omitempty"`
}

// RunYearEnd closes the given year for every active employee: annual leave
// carries forward up to the policy cap into year+1 (the excess is
// forfeited), optional leave is zeroed and re-allocated fresh, and the
// remaining non-carrying kinds are zeroed. Each employee's rollover is one
// transaction guarded by a year marker, so the batch is resumable and
// re-runs are per-employee no-ops.
func (s *Service) RunYearEnd(ctx context.Context, year int) (YearEndSummary, error) {
	summary := YearEndSummary{Year: year}

	annual, _ := PolicyFor(KindAnnual)
	optional, _ := PolicyFor(KindOptional)

	employees, err := s.Store.ListActiveEmployees(ctx)
	if err != nil {
		return summary, err
	}

	for _, employee := range employees {
		carry, err := s.carryForwardAmount(ctx, employee.ID, annual, year)
		if err != nil {
			slog.Warn("year-end carry-forward calculation failed", "employeeId", employee.ID, "err", err)
			summary.Failures = append(summary.Failures, BatchFailure{EmployeeID: employee.ID, Reason: err.Error()})
			continue
		}

		applied, err := s.Store.CloseYearTx(ctx, employee.ID, year, carry, optional.InitialAllocation)
		if err != nil {
			slog.Warn("year-end rollover failed", "employeeId", employee.ID, "err", err)
			summary.Failures = append(summary.Failures, BatchFailure{EmployeeID: employee.ID, Reason: err.Error()})
			continue
		}
		if !applied {
			summary.Skipped++
			continue
		}
		summary.Processed++
	}

	slog.Info("year-end run finished",
		"year", year, "processed", summary.Processed,
		"skipped", summary.Skipped, "failures", len(summary.Failures))
	return summary, nil
}

// carryForwardAmount is min(previous remaining, policy cap); employees with
// no annual balance for the closing year carry nothing.
func (s *Service) carryForwardAmount(ctx context.Context, employeeID string, annual Policy, year int) (decimal.Decimal, error) {
	balance, err := s.Store.GetBalance(ctx, employeeID, KindAnnual, year)
	if errors.Is(err, ErrBalanceNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	if !balance.Remaining.IsPositive() {
		return decimal.Zero, nil
	}
	return decimal.Min(balance.Remaining, annual.MaxCarryForward), nil
}
