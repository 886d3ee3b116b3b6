package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"hrms/internal/domain/leave"
	"hrms/internal/platform/metrics"
)

const (
	QueueDefault = "default"

	// TaskLeaveAccrual grants the monthly entitlement. Scheduled daily; the
	// engine only acts on the 1st of the month and is idempotent per
	// employee, so extra invocations are harmless.
	TaskLeaveAccrual = "leave:accrual"

	// TaskLeaveYearEnd closes a leave year: carry-forward, forfeiture and the
	// fresh optional allocation.
	TaskLeaveYearEnd = "leave:year_end"
)

// AccrualPayload optionally pins the run date; an empty payload means "now",
// which is what the scheduler sends.
type AccrualPayload struct {
	AsOf string `json:"asOf,omitempty"`
}

// YearEndPayload optionally pins the year to close; zero means the year that
// just ended.
type YearEndPayload struct {
	Year int `json:"year,omitempty"`
}

func NewLeaveAccrualTask(payload AccrualPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeaveAccrual, data), nil
}

func NewLeaveYearEndTask(payload YearEndPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeaveYearEnd, data), nil
}

// LeaveEngine is the slice of the leave service the job handlers invoke.
type LeaveEngine interface {
	RunMonthlyAccrual(ctx context.Context, asOf time.Time) (leave.AccrualSummary, error)
	RunYearEnd(ctx context.Context, year int) (leave.YearEndSummary, error)
}

// LeaveHandlers processes the scheduled leave tasks.
type LeaveHandlers struct {
	Engine  LeaveEngine
	Metrics *metrics.Collector

	now func() time.Time
}

func NewLeaveHandlers(engine LeaveEngine, collector *metrics.Collector) *LeaveHandlers {
	return &LeaveHandlers{Engine: engine, Metrics: collector, now: time.Now}
}

func (h *LeaveHandlers) HandleAccrual(ctx context.Context, t *asynq.Task) error {
	var payload AccrualPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("accrual payload: %w", asynq.SkipRetry)
		}
	}

	asOf := h.now()
	if payload.AsOf != "" {
		parsed, err := time.Parse("2006-01-02", payload.AsOf)
		if err != nil {
			return fmt.Errorf("accrual asOf %q: %w", payload.AsOf, asynq.SkipRetry)
		}
		asOf = parsed
	}

	summary, err := h.Engine.RunMonthlyAccrual(ctx, asOf)
	if h.Metrics != nil {
		h.Metrics.RecordAccrualRun(err != nil || len(summary.Failures) > 0)
	}
	if err != nil {
		return fmt.Errorf("monthly accrual: %w", err)
	}
	if len(summary.Failures) > 0 {
		slog.Warn("monthly accrual finished with failures",
			"year", summary.Year, "month", int(summary.Month), "failures", len(summary.Failures))
	}
	return nil
}

func (h *LeaveHandlers) HandleYearEnd(ctx context.Context, t *asynq.Task) error {
	var payload YearEndPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("year-end payload: %w", asynq.SkipRetry)
		}
	}

	year := payload.Year
	if year == 0 {
		// Scheduled just after midnight on Jan 1; close the year that ended.
		year = h.now().Year() - 1
	}

	summary, err := h.Engine.RunYearEnd(ctx, year)
	if h.Metrics != nil {
		h.Metrics.RecordYearEndRun(err != nil || len(summary.Failures) > 0)
	}
	if err != nil {
		return fmt.Errorf("year-end rollover: %w", err)
	}
	if len(summary.Failures) > 0 {
		slog.Warn("year-end finished with failures", "year", year, "failures", len(summary.Failures))
	}
	return nil
}
