package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ApproveRequestTx holds the ledger row lock across the balance check and
// deduction, so two concurrent approvals cannot both pass against a stale
// remaining balance.
func (s *Store) ApproveRequestTx(ctx context.Context, requestID, approverID string, now time.Time) (Request, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Request{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var employeeID, status string
	var kind Kind
	var days float64
	var startDate time.Time
	err = tx.QueryRow(ctx, `
    SELECT employee_id, kind, days, status, start_date
    FROM leave_requests
    WHERE id = $1
    FOR UPDATE
  `, requestID).Scan(&employeeID, &kind, &days, &status, &startDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	if err != nil {
		return Request{}, err
	}
	if terminal(status) {
		return Request{}, ErrInvalidState
	}

	var remaining float64
	err = tx.QueryRow(ctx, `
    SELECT leaves_remaining
    FROM leave_balances
    WHERE employee_id = $1 AND kind = $2 AND year = $3
    FOR UPDATE
  `, employeeID, kind, startDate.Year()).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrBalanceNotFound
	}
	if err != nil {
		return Request{}, err
	}
	if decimal.NewFromFloat(remaining).LessThan(decimal.NewFromFloat(days)) {
		return Request{}, ErrInsufficientBalance
	}

	if _, err := tx.Exec(ctx, `
    UPDATE leave_balances
    SET leaves_taken = leaves_taken + $1, leaves_remaining = leaves_remaining - $1, updated_at = now()
    WHERE employee_id = $2 AND kind = $3 AND year = $4
  `, days, employeeID, kind, startDate.Year()); err != nil {
		return Request{}, err
	}

	row := tx.QueryRow(ctx, fmt.Sprintf(`
    UPDATE leave_requests
    SET status = $2, approved_by = $3, approved_at = $4
    WHERE id = $1
    RETURNING %s
  `, requestColumns), requestID, StatusApproved, approverID, now)

	approved, err := scanRequest(row)
	if err != nil {
		return Request{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Request{}, err
	}
	return approved, nil
}

func (s *Store) RejectRequestTx(ctx context.Context, requestID, approverID, reason string, now time.Time) (Request, error) {
	row := s.DB.QueryRow(ctx, fmt.Sprintf(`
    UPDATE leave_requests
    SET status = $2, approved_by = $3, approved_at = $4, rejection_reason = NULLIF($5, '')
    WHERE id = $1 AND status IN ($6, $7)
    RETURNING %s
  `, requestColumns), requestID, StatusRejected, approverID, now, reason, StatusNew, StatusPending)

	rejected, err := scanRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		// Either the request does not exist or it is already terminal.
		if _, getErr := s.GetRequest(ctx, requestID); getErr != nil {
			return Request{}, getErr
		}
		return Request{}, ErrInvalidState
	}
	if err != nil {
		return Request{}, err
	}
	return rejected, nil
}

func (s *Store) AccrueMonthlyTx(ctx context.Context, employeeID string, kind Kind, year int, month time.Month, amount decimal.Decimal) (bool, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
    INSERT INTO leave_accrual_runs (employee_id, year, month, amount)
    VALUES ($1, $2, $3, $4)
    ON CONFLICT (employee_id, year, month) DO NOTHING
  `, employeeID, year, int(month), amount.InexactFloat64())
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO leave_balances (employee_id, kind, year, total_leaves, leaves_taken, leaves_remaining, carry_forward)
    VALUES ($1, $2, $3, $4, 0, $4, 0)
    ON CONFLICT (employee_id, kind, year)
    DO UPDATE SET total_leaves = leave_balances.total_leaves + EXCLUDED.total_leaves,
                  leaves_remaining = leave_balances.leaves_remaining + EXCLUDED.total_leaves,
                  updated_at = now()
  `, employeeID, kind, year, amount.InexactFloat64()); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) CloseYearTx(ctx context.Context, employeeID string, year int, carry, optionalAllocation decimal.Decimal) (bool, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
    INSERT INTO leave_year_end_runs (employee_id, year)
    VALUES ($1, $2)
    ON CONFLICT (employee_id, year) DO NOTHING
  `, employeeID, year)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if carry.IsPositive() {
		if _, err := tx.Exec(ctx, `
      INSERT INTO leave_balances (employee_id, kind, year, total_leaves, leaves_taken, leaves_remaining, carry_forward)
      VALUES ($1, $2, $3, $4, 0, $4, $4)
      ON CONFLICT (employee_id, kind, year)
      DO UPDATE SET total_leaves = leave_balances.total_leaves + EXCLUDED.carry_forward,
                    leaves_remaining = leave_balances.leaves_remaining + EXCLUDED.carry_forward,
                    carry_forward = EXCLUDED.carry_forward,
                    updated_at = now()
    `, employeeID, KindAnnual, year+1, carry.InexactFloat64()); err != nil {
			return false, err
		}
	}

	// Forfeit the non-carrying kinds: remaining drops to zero and total
	// follows taken so the ledger invariant keeps holding.
	if _, err := tx.Exec(ctx, `
    UPDATE leave_balances
    SET total_leaves = leaves_taken, leaves_remaining = 0, updated_at = now()
    WHERE employee_id = $1 AND year = $2 AND kind IN ($3, $4, $5, $6)
  `, employeeID, year, KindOptional, KindSick, KindCasual, KindCompOff); err != nil {
		return false, err
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO leave_balances (employee_id, kind, year, total_leaves, leaves_taken, leaves_remaining, carry_forward)
    VALUES ($1, $2, $3, $4, 0, $4, 0)
    ON CONFLICT (employee_id, kind, year) DO NOTHING
  `, employeeID, KindOptional, year+1, optionalAllocation.InexactFloat64()); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) GrantCompOffTx(ctx context.Context, employeeID string, workDate time.Time, reason string, now time.Time) (Request, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Request{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
    INSERT INTO leave_balances (employee_id, kind, year, total_leaves, leaves_taken, leaves_remaining, carry_forward)
    VALUES ($1, $2, $3, 1, 0, 1, 0)
    ON CONFLICT (employee_id, kind, year)
    DO UPDATE SET total_leaves = leave_balances.total_leaves + 1,
                  leaves_remaining = leave_balances.leaves_remaining + 1,
                  updated_at = now()
  `, employeeID, KindCompOff, workDate.Year()); err != nil {
		return Request{}, err
	}

	row := tx.QueryRow(ctx, fmt.Sprintf(`
    INSERT INTO leave_requests (employee_id, kind, start_date, end_date, days, is_half_day, reason, status, applied_at, approved_at)
    VALUES ($1, $2, $3, $3, 1, false, $4, $5, $6, $6)
    RETURNING %s
  `, requestColumns), employeeID, KindCompOff, workDate, reason, StatusApproved, now)

	granted, err := scanRequest(row)
	if err != nil {
		return Request{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Request{}, err
	}
	return granted, nil
}
