package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrms/internal/domain/leave"
	"hrms/internal/platform/metrics"
)

type fakeEngine struct {
	accrualAsOf time.Time
	yearEndYear int
	failures    []leave.BatchFailure
}

func (f *fakeEngine) RunMonthlyAccrual(_ context.Context, asOf time.Time) (leave.AccrualSummary, error) {
	f.accrualAsOf = asOf
	return leave.AccrualSummary{
		Year: asOf.Year(), Month: asOf.Month(), Ran: asOf.Day() == 1,
		Failures: f.failures,
	}, nil
}

func (f *fakeEngine) RunYearEnd(_ context.Context, year int) (leave.YearEndSummary, error) {
	f.yearEndYear = year
	return leave.YearEndSummary{Year: year, Failures: f.failures}, nil
}

func handlersAt(engine LeaveEngine, collector *metrics.Collector, now time.Time) *LeaveHandlers {
	h := NewLeaveHandlers(engine, collector)
	h.now = func() time.Time { return now }
	return h
}

func TestHandleAccrualDefaultsToNow(t *testing.T) {
	engine := &fakeEngine{}
	now := time.Date(2025, time.March, 1, 2, 0, 0, 0, time.UTC)
	h := handlersAt(engine, metrics.New(), now)

	task, err := NewLeaveAccrualTask(AccrualPayload{})
	require.NoError(t, err)
	require.NoError(t, h.HandleAccrual(context.Background(), task))

	assert.True(t, engine.accrualAsOf.Equal(now))
}

func TestHandleAccrualPinnedDate(t *testing.T) {
	engine := &fakeEngine{}
	h := handlersAt(engine, metrics.New(), time.Now())

	task, err := NewLeaveAccrualTask(AccrualPayload{AsOf: "2025-07-01"})
	require.NoError(t, err)
	require.NoError(t, h.HandleAccrual(context.Background(), task))

	assert.Equal(t, 2025, engine.accrualAsOf.Year())
	assert.Equal(t, time.July, engine.accrualAsOf.Month())
	assert.Equal(t, 1, engine.accrualAsOf.Day())
}

func TestHandleAccrualBadPayloadSkipsRetry(t *testing.T) {
	h := handlersAt(&fakeEngine{}, metrics.New(), time.Now())

	err := h.HandleAccrual(context.Background(), asynq.NewTask(TaskLeaveAccrual, []byte("{not json")))
	require.ErrorIs(t, err, asynq.SkipRetry)

	task, err := NewLeaveAccrualTask(AccrualPayload{AsOf: "01/07/2025"})
	require.NoError(t, err)
	require.ErrorIs(t, h.HandleAccrual(context.Background(), task), asynq.SkipRetry)
}

func TestHandleYearEndClosesPreviousYear(t *testing.T) {
	engine := &fakeEngine{}
	now := time.Date(2026, time.January, 1, 3, 0, 0, 0, time.UTC)
	h := handlersAt(engine, metrics.New(), now)

	task, err := NewLeaveYearEndTask(YearEndPayload{})
	require.NoError(t, err)
	require.NoError(t, h.HandleYearEnd(context.Background(), task))

	assert.Equal(t, 2025, engine.yearEndYear)
}

func TestHandleYearEndPinnedYear(t *testing.T) {
	engine := &fakeEngine{}
	h := handlersAt(engine, metrics.New(), time.Now())

	task, err := NewLeaveYearEndTask(YearEndPayload{Year: 2023})
	require.NoError(t, err)
	require.NoError(t, h.HandleYearEnd(context.Background(), task))

	assert.Equal(t, 2023, engine.yearEndYear)
}

func TestHandlersRecordMetrics(t *testing.T) {
	collector := metrics.New()
	engine := &fakeEngine{failures: []leave.BatchFailure{{EmployeeID: "emp-1", Reason: "boom"}}}
	now := time.Date(2025, time.March, 1, 2, 0, 0, 0, time.UTC)
	h := handlersAt(engine, collector, now)

	task, err := NewLeaveAccrualTask(AccrualPayload{})
	require.NoError(t, err)
	require.NoError(t, h.HandleAccrual(context.Background(), task))

	snap := collector.Snapshot()
	assert.Equal(t, uint64(1), snap["accrualRunsTotal"])
	assert.Equal(t, uint64(1), snap["accrualRunsFailed"])
}
