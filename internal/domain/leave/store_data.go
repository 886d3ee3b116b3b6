package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

func (s *Store) ListTypes(ctx context.Context) ([]LeaveType, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, kind, max_days, accrual_rate, is_optional, max_carry_forward, can_use_same_month, is_active, created_at
    FROM leave_types
    WHERE is_active
    ORDER BY kind
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []LeaveType
	for rows.Next() {
		var t LeaveType
		var rate float64
		if err := rows.Scan(&t.ID, &t.Kind, &t.MaxDays, &rate, &t.IsOptional, &t.MaxCarryForward, &t.CanUseSameMonth, &t.IsActive, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.AccrualRate = decimal.NewFromFloat(rate)
		types = append(types, t)
	}
	return types, rows.Err()
}

func (s *Store) CreateRegion(ctx context.Context, name, code string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO regions (name, code)
    VALUES ($1, $2)
    RETURNING id
  `, name, code).Scan(&id)
	return id, mapStoreError(err)
}

func (s *Store) ListRegions(ctx context.Context) ([]Region, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, code, is_active, created_at
    FROM regions
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regions []Region
	for rows.Next() {
		var region Region
		if err := rows.Scan(&region.ID, &region.Name, &region.Code, &region.IsActive, &region.CreatedAt); err != nil {
			return nil, err
		}
		regions = append(regions, region)
	}
	return regions, rows.Err()
}

func (s *Store) CreateHoliday(ctx context.Context, regionID, name string, date time.Time, optional bool) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO holidays (region_id, name, date, is_optional)
    VALUES ($1, $2, $3, $4)
    RETURNING id
  `, regionID, name, date, optional).Scan(&id)
	return id, mapStoreError(err)
}

func (s *Store) ListHolidays(ctx context.Context, regionID string) ([]Holiday, error) {
	query := `
    SELECT id, region_id, name, date, is_optional, created_at
    FROM holidays
  `
	args := []any{}
	if regionID != "" {
		query += " WHERE region_id = $1"
		args = append(args, regionID)
	}
	query += " ORDER BY date"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHolidays(rows)
}

func (s *Store) HolidaysInRange(ctx context.Context, regionName string, start, end time.Time) ([]Holiday, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT h.id, h.region_id, h.name, h.date, h.is_optional, h.created_at
    FROM holidays h
    JOIN regions r ON h.region_id = r.id
    WHERE lower(r.name) = lower($1) AND h.date BETWEEN $2 AND $3
    ORDER BY h.date
  `, regionName, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHolidays(rows)
}

func (s *Store) IsRegionHoliday(ctx context.Context, regionName string, date time.Time) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM holidays h
    JOIN regions r ON h.region_id = r.id
    WHERE lower(r.name) = lower($1) AND h.date = $2
  `, regionName, date).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanHolidays(rows pgx.Rows) ([]Holiday, error) {
	var holidays []Holiday
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.ID, &h.RegionID, &h.Name, &h.Date, &h.IsOptional, &h.CreatedAt); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (EmployeeInfo, error) {
	var employee EmployeeInfo
	err := s.DB.QueryRow(ctx, `
    SELECT id, date_of_joining, COALESCE(location, ''), probation_end_date
    FROM employees
    WHERE id = $1
  `, employeeID).Scan(&employee.ID, &employee.DateOfJoining, &employee.Location, &employee.ProbationEndDate)
	if err != nil {
		return EmployeeInfo{}, mapStoreError(err)
	}
	return employee, nil
}

func (s *Store) ListActiveEmployees(ctx context.Context) ([]EmployeeInfo, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, date_of_joining, COALESCE(location, ''), probation_end_date
    FROM employees
    WHERE status = 'active'
    ORDER BY id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []EmployeeInfo
	for rows.Next() {
		var employee EmployeeInfo
		if err := rows.Scan(&employee.ID, &employee.DateOfJoining, &employee.Location, &employee.ProbationEndDate); err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	return employees, rows.Err()
}

func (s *Store) SetProbationEndDate(ctx context.Context, employeeID string, end time.Time) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees SET probation_end_date = $1, updated_at = now()
    WHERE id = $2 AND probation_end_date IS NULL
  `, end, employeeID)
	if err != nil {
		return err
	}
	// Zero rows means another caller already persisted it; the value is
	// deterministic, so that is fine.
	_ = tag
	return nil
}

const balanceColumns = `id, employee_id, kind, year, total_leaves, leaves_taken, leaves_remaining, carry_forward, created_at, updated_at`

func (s *Store) GetBalance(ctx context.Context, employeeID string, kind Kind, year int) (Balance, error) {
	row := s.DB.QueryRow(ctx, fmt.Sprintf(`
    SELECT %s
    FROM leave_balances
    WHERE employee_id = $1 AND kind = $2 AND year = $3
  `, balanceColumns), employeeID, kind, year)

	balance, err := scanBalance(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Balance{}, ErrBalanceNotFound
	}
	if err != nil {
		return Balance{}, err
	}
	return balance, nil
}

func (s *Store) ListBalances(ctx context.Context, employeeID string, year int) ([]Balance, error) {
	rows, err := s.DB.Query(ctx, fmt.Sprintf(`
    SELECT %s
    FROM leave_balances
    WHERE employee_id = $1 AND year = $2
    ORDER BY kind
  `, balanceColumns), employeeID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []Balance
	for rows.Next() {
		balance, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		balances = append(balances, balance)
	}
	return balances, rows.Err()
}

func (s *Store) SeedBalance(ctx context.Context, employeeID string, kind Kind, year int, total decimal.Decimal) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO leave_balances (employee_id, kind, year, total_leaves, leaves_taken, leaves_remaining, carry_forward)
    VALUES ($1, $2, $3, $4, 0, $4, 0)
    ON CONFLICT (employee_id, kind, year) DO NOTHING
  `, employeeID, kind, year, total.InexactFloat64())
	return err
}

func (s *Store) AddEntitlement(ctx context.Context, employeeID string, kind Kind, year int, amount decimal.Decimal) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO leave_balances (employee_id, kind, year, total_leaves, leaves_taken, leaves_remaining, carry_forward)
    VALUES ($1, $2, $3, $4, 0, $4, 0)
    ON CONFLICT (employee_id, kind, year)
    DO UPDATE SET total_leaves = leave_balances.total_leaves + EXCLUDED.total_leaves,
                  leaves_remaining = leave_balances.leaves_remaining + EXCLUDED.total_leaves,
                  updated_at = now()
  `, employeeID, kind, year, amount.InexactFloat64())
	return err
}

func scanBalance(row pgx.Row) (Balance, error) {
	var balance Balance
	var total, taken, remaining, carry float64
	if err := row.Scan(&balance.ID, &balance.EmployeeID, &balance.Kind, &balance.Year,
		&total, &taken, &remaining, &carry, &balance.CreatedAt, &balance.UpdatedAt); err != nil {
		return Balance{}, err
	}
	balance.Total = decimal.NewFromFloat(total)
	balance.Taken = decimal.NewFromFloat(taken)
	balance.Remaining = decimal.NewFromFloat(remaining)
	balance.CarryForward = decimal.NewFromFloat(carry)
	return balance, nil
}

const requestColumns = `id, employee_id, kind, start_date, end_date, days, is_half_day, COALESCE(half_day_period, ''), reason, status, applied_at, COALESCE(approved_by, ''), approved_at, COALESCE(rejection_reason, '')`

func (s *Store) CreateRequest(ctx context.Context, req Request) (Request, error) {
	row := s.DB.QueryRow(ctx, fmt.Sprintf(`
    INSERT INTO leave_requests (employee_id, kind, start_date, end_date, days, is_half_day, half_day_period, reason, status, applied_at)
    VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10)
    RETURNING %s
  `, requestColumns), req.EmployeeID, req.Kind, req.StartDate, req.EndDate, req.Days.InexactFloat64(),
		req.IsHalfDay, req.HalfDayPeriod, req.Reason, req.Status, req.AppliedAt)

	created, err := scanRequest(row)
	if err != nil {
		return Request{}, mapStoreError(err)
	}
	return created, nil
}

func (s *Store) GetRequest(ctx context.Context, requestID string) (Request, error) {
	row := s.DB.QueryRow(ctx, fmt.Sprintf(`
    SELECT %s
    FROM leave_requests
    WHERE id = $1
  `, requestColumns), requestID)

	request, err := scanRequest(row)
	if err != nil {
		return Request{}, mapStoreError(err)
	}
	return request, nil
}

func (s *Store) ListRequests(ctx context.Context, filter RequestFilter) ([]Request, error) {
	query := fmt.Sprintf(`
    SELECT %s
    FROM leave_requests
    WHERE 1=1
  `, requestColumns)
	args := []any{}

	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		query += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND end_date >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND start_date <= $%d", len(args))
	}
	query += " ORDER BY applied_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}

func (s *Store) HasApprovedCompOff(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM leave_requests
    WHERE employee_id = $1 AND kind = $2 AND start_date = $3 AND status = $4
  `, employeeID, KindCompOff, date, StatusApproved).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanRequest(row pgx.Row) (Request, error) {
	var request Request
	var days float64
	if err := row.Scan(&request.ID, &request.EmployeeID, &request.Kind, &request.StartDate, &request.EndDate,
		&days, &request.IsHalfDay, &request.HalfDayPeriod, &request.Reason, &request.Status,
		&request.AppliedAt, &request.ApprovedBy, &request.ApprovedAt, &request.RejectionReason); err != nil {
		return Request{}, err
	}
	request.Days = decimal.NewFromFloat(days)
	return request, nil
}
