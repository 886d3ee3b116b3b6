package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrms/internal/domain/leave"
)

// Seed inserts the leave type catalogue and the default regions. Every
// statement is idempotent, so running it on each startup is safe.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	if err := ensureLeaveTypes(ctx, pool); err != nil {
		return err
	}
	return ensureDefaultRegions(ctx, pool)
}

func ensureLeaveTypes(ctx context.Context, pool *pgxpool.Pool) error {
	for _, kind := range leave.Kinds() {
		policy, _ := leave.PolicyFor(kind)
		_, err := pool.Exec(ctx, `
      INSERT INTO leave_types (kind, max_days, accrual_rate, is_optional, max_carry_forward, can_use_same_month)
      VALUES ($1, $2, $3, $4, $5, $6)
      ON CONFLICT (kind) DO NOTHING
    `, kind, policy.MaxDays, policy.MonthlyAccrual.InexactFloat64(),
			policy.IsOptional, policy.MaxCarryForward.IntPart(), policy.CanUseSameMonth)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureDefaultRegions(ctx context.Context, pool *pgxpool.Pool) error {
	regions := []struct {
		name string
		code string
	}{
		{"pune", "PNQ"},
		{"bangalore", "BLR"},
		{"hyderabad", "HYD"},
	}
	for _, region := range regions {
		_, err := pool.Exec(ctx, `
      INSERT INTO regions (name, code)
      VALUES ($1, $2)
      ON CONFLICT (name) DO NOTHING
    `, region.name, region.code)
		if err != nil {
			return err
		}
	}
	return nil
}
