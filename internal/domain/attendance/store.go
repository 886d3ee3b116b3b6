package attendance

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

const recordColumns = `id, employee_id, date, check_in, check_out, created_at, updated_at`

func (s *Store) CreateCheckIn(ctx context.Context, employeeID string, date, checkIn time.Time) (Record, error) {
	row := s.DB.QueryRow(ctx, fmt.Sprintf(`
    INSERT INTO attendance (employee_id, date, check_in)
    VALUES ($1, $2, $3)
    RETURNING %s
  `, recordColumns), employeeID, date, checkIn)

	record, err := scanRecord(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Record{}, ErrAlreadyCheckedIn
		}
		return Record{}, err
	}
	return record, nil
}

func (s *Store) SetCheckOut(ctx context.Context, employeeID string, date, checkOut time.Time) (Record, error) {
	row := s.DB.QueryRow(ctx, fmt.Sprintf(`
    UPDATE attendance
    SET check_out = $1, updated_at = now()
    WHERE employee_id = $2 AND date = $3
    RETURNING %s
  `, recordColumns), checkOut, employeeID, date)

	record, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	return record, nil
}

func (s *Store) GetRecord(ctx context.Context, employeeID string, date time.Time) (Record, error) {
	row := s.DB.QueryRow(ctx, fmt.Sprintf(`
    SELECT %s
    FROM attendance
    WHERE employee_id = $1 AND date = $2
  `, recordColumns), employeeID, date)

	record, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	return record, nil
}

func (s *Store) ListRecords(ctx context.Context, filter RecordFilter) ([]Record, error) {
	query := fmt.Sprintf(`
    SELECT %s
    FROM attendance
    WHERE 1=1
  `, recordColumns)
	args := []any{}

	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		query += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	query += " ORDER BY date DESC"
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

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanRecord(row pgx.Row) (Record, error) {
	var r Record
	if err := row.Scan(&r.ID, &r.EmployeeID, &r.Date, &r.CheckIn, &r.CheckOut, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return Record{}, err
	}
	return r, nil
}
