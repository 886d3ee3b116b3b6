package attendance

import (
	"context"
	"errors"
	"time"

	"hrms/internal/domain/auth"
)

// StoreAPI is the persistence surface the service depends on.
type StoreAPI interface {
	CreateCheckIn(ctx context.Context, employeeID string, date, checkIn time.Time) (Record, error)
	SetCheckOut(ctx context.Context, employeeID string, date, checkOut time.Time) (Record, error)
	GetRecord(ctx context.Context, employeeID string, date time.Time) (Record, error)
	ListRecords(ctx context.Context, filter RecordFilter) ([]Record, error)
}

type Service struct {
	Store StoreAPI

	now func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store, now: time.Now}
}

// CheckIn opens the employee's attendance record for today. One record per
// day: a second check-in is rejected rather than moving the original time,
// since the first check-in decides the late status.
func (s *Service) CheckIn(ctx context.Context, actor auth.ActorContext, employeeID string) (Record, error) {
	if actor.Role == auth.RoleEmployee && actor.EmployeeID != employeeID {
		return Record{}, ErrForbidden
	}

	now := s.now()
	return s.Store.CreateCheckIn(ctx, employeeID, dateOnly(now), now)
}

// CheckOut stamps the closing time on today's record. Checking out again
// later in the day moves the time forward, so the last check-out wins.
func (s *Service) CheckOut(ctx context.Context, actor auth.ActorContext, employeeID string) (Record, error) {
	if actor.Role == auth.RoleEmployee && actor.EmployeeID != employeeID {
		return Record{}, ErrForbidden
	}

	now := s.now()
	record, err := s.Store.SetCheckOut(ctx, employeeID, dateOnly(now), now)
	if errors.Is(err, ErrNotFound) {
		return Record{}, ErrNotCheckedIn
	}
	return record, err
}

func (s *Service) GetToday(ctx context.Context, actor auth.ActorContext, employeeID string) (Record, error) {
	if actor.Role == auth.RoleEmployee && actor.EmployeeID != employeeID {
		return Record{}, ErrForbidden
	}
	return s.Store.GetRecord(ctx, employeeID, dateOnly(s.now()))
}

func (s *Service) ListRecords(ctx context.Context, actor auth.ActorContext, filter RecordFilter) ([]Record, error) {
	if actor.Role == auth.RoleEmployee {
		filter.EmployeeID = actor.EmployeeID
	}
	return s.Store.ListRecords(ctx, filter)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
