package hr

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"hrms/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

var _ StoreAPI = (*Store)(nil)

const employeeColumns = `id, first_name, last_name, email, COALESCE(designation, ''), date_of_joining, COALESCE(location, ''), status, probation_end_date, created_at, updated_at`

func (s *Store) CreateEmployee(ctx context.Context, e Employee) (Employee, error) {
	row := s.DB.QueryRow(ctx, fmt.Sprintf(`
    INSERT INTO employees (first_name, last_name, email, designation, date_of_joining, location, status)
    VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7)
    RETURNING %s
  `, employeeColumns), e.FirstName, e.LastName, e.Email, e.Designation, e.DateOfJoining, e.Location, e.Status)

	created, err := scanEmployee(row)
	if err != nil {
		return Employee{}, mapStoreError(err)
	}
	return created, nil
}

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	row := s.DB.QueryRow(ctx, fmt.Sprintf(`
    SELECT %s
    FROM employees
    WHERE id = $1
  `, employeeColumns), employeeID)

	employee, err := scanEmployee(row)
	if err != nil {
		return Employee{}, mapStoreError(err)
	}
	return employee, nil
}

func (s *Store) GetEmployeeByEmail(ctx context.Context, email string) (Employee, error) {
	row := s.DB.QueryRow(ctx, fmt.Sprintf(`
    SELECT %s
    FROM employees
    WHERE lower(email) = lower($1)
  `, employeeColumns), email)

	employee, err := scanEmployee(row)
	if err != nil {
		return Employee{}, mapStoreError(err)
	}
	return employee, nil
}

func (s *Store) ListEmployees(ctx context.Context, filter EmployeeFilter) ([]Employee, error) {
	query := fmt.Sprintf(`
    SELECT %s
    FROM employees
    WHERE 1=1
  `, employeeColumns)
	args := []any{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Location != "" {
		args = append(args, filter.Location)
		query += fmt.Sprintf(" AND lower(location) = lower($%d)", len(args))
	}
	query += " ORDER BY last_name, first_name"
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

	var employees []Employee
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	return employees, rows.Err()
}

func (s *Store) UpdateEmployee(ctx context.Context, e Employee) (Employee, error) {
	row := s.DB.QueryRow(ctx, fmt.Sprintf(`
    UPDATE employees
    SET first_name = $1, last_name = $2, email = $3, designation = NULLIF($4, ''),
        date_of_joining = $5, location = NULLIF($6, ''), updated_at = now()
    WHERE id = $7
    RETURNING %s
  `, employeeColumns), e.FirstName, e.LastName, e.Email, e.Designation, e.DateOfJoining, e.Location, e.ID)

	updated, err := scanEmployee(row)
	if err != nil {
		return Employee{}, mapStoreError(err)
	}
	return updated, nil
}

func (s *Store) SetEmployeeStatus(ctx context.Context, employeeID, status string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees SET status = $1, updated_at = now()
    WHERE id = $2
  `, status, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetProbationEndDate(ctx context.Context, employeeID string, end time.Time) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees SET probation_end_date = $1, updated_at = now()
    WHERE id = $2
  `, end, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	if err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.Designation,
		&e.DateOfJoining, &e.Location, &e.Status, &e.ProbationEndDate,
		&e.CreatedAt, &e.UpdatedAt); err != nil {
		return Employee{}, err
	}
	return e, nil
}

func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAlreadyExists
	}
	return err
}
