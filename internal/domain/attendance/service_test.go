package attendance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrms/internal/domain/auth"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, time.June, 10, hour, minute, 0, 0, time.UTC)
}

func TestRecordStatus(t *testing.T) {
	tests := []struct {
		name    string
		checkIn *time.Time
		want    string
	}{
		{name: "no check-in is absent", checkIn: nil, want: StatusAbsent},
		{name: "before cutoff", checkIn: ptr(at(9, 0)), want: StatusOnTime},
		{name: "exactly at cutoff", checkIn: ptr(at(9, 30)), want: StatusOnTime},
		{name: "one minute past cutoff", checkIn: ptr(at(9, 31)), want: StatusLate},
		{name: "afternoon", checkIn: ptr(at(13, 0)), want: StatusLate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			record := Record{CheckIn: tc.checkIn}
			assert.Equal(t, tc.want, record.Status())
		})
	}
}

func TestRecordWorkedHours(t *testing.T) {
	record := Record{CheckIn: ptr(at(9, 15)), CheckOut: ptr(at(17, 45))}
	assert.Equal(t, 8*time.Hour+30*time.Minute, record.WorkedHours())

	assert.Zero(t, Record{CheckIn: ptr(at(9, 0))}.WorkedHours())
	assert.Zero(t, Record{}.WorkedHours())
}

func ptr(t time.Time) *time.Time { return &t }

type memStore struct {
	records map[string]*Record
	seq     int
}

func newMemStore() *memStore {
	return &memStore{records: map[string]*Record{}}
}

func key(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format("2006-01-02")
}

func (m *memStore) CreateCheckIn(_ context.Context, employeeID string, date, checkIn time.Time) (Record, error) {
	k := key(employeeID, date)
	if _, ok := m.records[k]; ok {
		return Record{}, ErrAlreadyCheckedIn
	}
	m.seq++
	record := &Record{
		ID:         fmt.Sprintf("att-%d", m.seq),
		EmployeeID: employeeID,
		Date:       date,
		CheckIn:    &checkIn,
	}
	m.records[k] = record
	return *record, nil
}

func (m *memStore) SetCheckOut(_ context.Context, employeeID string, date, checkOut time.Time) (Record, error) {
	record, ok := m.records[key(employeeID, date)]
	if !ok {
		return Record{}, ErrNotFound
	}
	record.CheckOut = &checkOut
	return *record, nil
}

func (m *memStore) GetRecord(_ context.Context, employeeID string, date time.Time) (Record, error) {
	record, ok := m.records[key(employeeID, date)]
	if !ok {
		return Record{}, ErrNotFound
	}
	return *record, nil
}

func (m *memStore) ListRecords(_ context.Context, filter RecordFilter) ([]Record, error) {
	var out []Record
	for _, record := range m.records {
		if filter.EmployeeID != "" && record.EmployeeID != filter.EmployeeID {
			continue
		}
		out = append(out, *record)
	}
	return out, nil
}

func fixedService(store StoreAPI, now time.Time) *Service {
	s := NewService(store)
	s.now = func() time.Time { return now }
	return s
}

func self(employeeID string) auth.ActorContext {
	return auth.ActorContext{EmployeeID: employeeID, Role: auth.RoleEmployee}
}

func TestCheckInOnceADay(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	service := fixedService(store, at(9, 10))

	record, err := service.CheckIn(ctx, self("emp-1"), "emp-1")
	require.NoError(t, err)
	assert.Equal(t, StatusOnTime, record.Status())

	_, err = service.CheckIn(ctx, self("emp-1"), "emp-1")
	require.ErrorIs(t, err, ErrAlreadyCheckedIn)
}

func TestCheckOutRequiresCheckIn(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	service := fixedService(store, at(18, 0))

	_, err := service.CheckOut(ctx, self("emp-1"), "emp-1")
	require.ErrorIs(t, err, ErrNotCheckedIn)
}

func TestCheckInCheckOutFlow(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	service := fixedService(store, at(9, 40))

	_, err := service.CheckIn(ctx, self("emp-1"), "emp-1")
	require.NoError(t, err)

	service.now = func() time.Time { return at(18, 10) }
	record, err := service.CheckOut(ctx, self("emp-1"), "emp-1")
	require.NoError(t, err)

	assert.Equal(t, StatusLate, record.Status())
	assert.Equal(t, 8*time.Hour+30*time.Minute, record.WorkedHours())

	// The last check-out of the day wins.
	service.now = func() time.Time { return at(19, 0) }
	record, err = service.CheckOut(ctx, self("emp-1"), "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 9*time.Hour+20*time.Minute, record.WorkedHours())
}

func TestAttendanceScoping(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	service := fixedService(store, at(9, 0))

	_, err := service.CheckIn(ctx, self("emp-1"), "emp-2")
	require.ErrorIs(t, err, ErrForbidden)

	_, err = service.CheckIn(ctx, self("emp-1"), "emp-1")
	require.NoError(t, err)
	_, err = service.CheckIn(ctx, self("emp-2"), "emp-2")
	require.NoError(t, err)

	mine, err := service.ListRecords(ctx, self("emp-1"), RecordFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "emp-1", mine[0].EmployeeID)

	manager := auth.ActorContext{EmployeeID: "mgr-1", Role: auth.RoleManager}
	all, err := service.ListRecords(ctx, manager, RecordFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
