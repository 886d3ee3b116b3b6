package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"hrms/internal/domain/auth"
)

type Service struct {
	Store StoreAPI

	now func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store, now: time.Now}
}

type SubmitInput struct {
	EmployeeID    string
	Kind          Kind
	StartDate     time.Time
	EndDate       time.Time
	Days          decimal.Decimal
	IsHalfDay     bool
	HalfDayPeriod string
	Reason        string
}

// SubmitLeave validates and records a leave application as pending. The day
// count comes from the client when supplied; otherwise half-day requests are
// 0.5 and date ranges are counted as working days against the employee's
// region holidays (weekends only when the region does not resolve). No
// balance is touched at submission.
func (s *Service) SubmitLeave(ctx context.Context, actor auth.ActorContext, input SubmitInput) (Request, error) {
	if actor.Role == auth.RoleEmployee && actor.EmployeeID != input.EmployeeID {
		return Request{}, ErrForbidden
	}
	if input.EndDate.Before(input.StartDate) {
		return Request{}, &ValidationError{Errors: []string{"end date is before start date"}}
	}
	if input.IsHalfDay {
		if input.HalfDayPeriod != HalfDayFirst && input.HalfDayPeriod != HalfDaySecond {
			return Request{}, &ValidationError{Errors: []string{"half-day requests need a first_half or second_half period"}}
		}
		if !input.StartDate.Equal(input.EndDate) {
			return Request{}, &ValidationError{Errors: []string{"half-day requests must start and end on the same date"}}
		}
	}

	days := input.Days
	if days.IsZero() {
		computed, err := s.requestDays(ctx, input)
		if err != nil {
			return Request{}, err
		}
		days = computed
	}

	ok, errs, _, err := s.ValidateLeaveApplication(ctx, input.EmployeeID, input.Kind, input.StartDate, input.EndDate, days)
	if err != nil {
		return Request{}, err
	}
	if !ok {
		return Request{}, &ValidationError{Errors: errs}
	}

	return s.Store.CreateRequest(ctx, Request{
		EmployeeID:    input.EmployeeID,
		Kind:          input.Kind,
		StartDate:     dateOnly(input.StartDate),
		EndDate:       dateOnly(input.EndDate),
		Days:          days,
		IsHalfDay:     input.IsHalfDay,
		HalfDayPeriod: input.HalfDayPeriod,
		Reason:        input.Reason,
		Status:        StatusPending,
		AppliedAt:     s.now(),
	})
}

func (s *Service) requestDays(ctx context.Context, input SubmitInput) (decimal.Decimal, error) {
	holidays := HolidaySet{}
	if !input.IsHalfDay {
		employee, err := s.Store.GetEmployee(ctx, input.EmployeeID)
		if err != nil {
			return decimal.Zero, err
		}
		if employee.Location != "" {
			regional, err := s.Store.HolidaysInRange(ctx, employee.Location, input.StartDate, input.EndDate)
			if err != nil {
				return decimal.Zero, err
			}
			holidays = NewHolidaySet(regional)
		}
	}
	return RequestDays(input.StartDate, input.EndDate, input.IsHalfDay, holidays)
}

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// DecideLeave drives the terminal transition of a request. Approval re-runs
// the full validation against the current ledger before the transactional
// deduction, so a balance consumed between submission and approval fails
// loudly and leaves the request pending. Rejection only records the reason.
func (s *Service) DecideLeave(ctx context.Context, actor auth.ActorContext, requestID, action, rejectionReason string) (Request, error) {
	if !actor.CanApprove() {
		return Request{}, ErrForbidden
	}

	request, err := s.Store.GetRequest(ctx, requestID)
	if err != nil {
		return Request{}, err
	}
	if terminal(request.Status) {
		return Request{}, ErrInvalidState
	}

	switch action {
	case ActionApprove:
		ok, errs, _, err := s.ValidateLeaveApplication(ctx, request.EmployeeID, request.Kind, request.StartDate, request.EndDate, request.Days)
		if err != nil {
			return Request{}, err
		}
		if !ok {
			return Request{}, &ValidationError{Errors: errs}
		}
		return s.Store.ApproveRequestTx(ctx, requestID, actor.EmployeeID, s.now())
	case ActionReject:
		return s.Store.RejectRequestTx(ctx, requestID, actor.EmployeeID, rejectionReason, s.now())
	default:
		return Request{}, fmt.Errorf("unknown action %q", action)
	}
}

func (s *Service) GetLeaveBalances(ctx context.Context, employeeID string, year int) ([]Balance, error) {
	return s.Store.ListBalances(ctx, employeeID, year)
}

func (s *Service) GetRequest(ctx context.Context, actor auth.ActorContext, requestID string) (Request, error) {
	request, err := s.Store.GetRequest(ctx, requestID)
	if err != nil {
		return Request{}, err
	}
	if actor.Role == auth.RoleEmployee && request.EmployeeID != actor.EmployeeID {
		return Request{}, ErrForbidden
	}
	return request, nil
}

func (s *Service) ListRequests(ctx context.Context, actor auth.ActorContext, filter RequestFilter) ([]Request, error) {
	if actor.Role == auth.RoleEmployee {
		filter.EmployeeID = actor.EmployeeID
	}
	return s.Store.ListRequests(ctx, filter)
}

// EarnCompOff credits one compensatory day off for working on a holiday in
// the employee's own region. A date can be claimed once.
func (s *Service) EarnCompOff(ctx context.Context, actor auth.ActorContext, employeeID string, workDate time.Time, reason string) (Request, error) {
	if actor.Role == auth.RoleEmployee && actor.EmployeeID != employeeID {
		return Request{}, ErrForbidden
	}

	employee, err := s.Store.GetEmployee(ctx, employeeID)
	if err != nil {
		return Request{}, err
	}
	if employee.Location == "" {
		return Request{}, &ValidationError{Errors: []string{"employee has no region assigned"}}
	}

	isHoliday, err := s.Store.IsRegionHoliday(ctx, employee.Location, workDate)
	if err != nil {
		return Request{}, err
	}
	if !isHoliday {
		return Request{}, &ValidationError{Errors: []string{"not a holiday in your region"}}
	}

	claimed, err := s.Store.HasApprovedCompOff(ctx, employeeID, workDate)
	if err != nil {
		return Request{}, err
	}
	if claimed {
		return Request{}, fmt.Errorf("comp off for %s: %w", workDate.Format(dateLayout), ErrAlreadyExists)
	}

	return s.Store.GrantCompOffTx(ctx, employeeID, dateOnly(workDate), reason, s.now())
}

// InitializeEmployeeBalances seeds the starting ledger rows for an employee
// and year from the policy table. Annual leave starts at zero (accrual fills
// it); existing rows are left untouched.
func (s *Service) InitializeEmployeeBalances(ctx context.Context, employeeID string, year int) error {
	for _, kind := range Kinds() {
		policy, _ := PolicyFor(kind)
		if err := s.Store.SeedBalance(ctx, employeeID, kind, year, policy.InitialAllocation); err != nil {
			return fmt.Errorf("seed %s balance: %w", kind, err)
		}
	}
	return nil
}

// AdjustBalance is the manual admin addition path: it raises total and
// remaining together so the ledger invariant holds.
func (s *Service) AdjustBalance(ctx context.Context, actor auth.ActorContext, employeeID string, kind Kind, year int, amount decimal.Decimal) error {
	if !actor.CanAdminister() {
		return ErrForbidden
	}
	if !amount.IsPositive() {
		return &ValidationError{Errors: []string{"adjustment amount must be positive"}}
	}
	if _, ok := PolicyFor(kind); !ok {
		return fmt.Errorf("%w: leave kind %q", ErrNotFound, kind)
	}
	return s.Store.AddEntitlement(ctx, employeeID, kind, year, amount)
}

func (s *Service) ListTypes(ctx context.Context) ([]LeaveType, error) {
	return s.Store.ListTypes(ctx)
}

func (s *Service) ListRegions(ctx context.Context) ([]Region, error) {
	return s.Store.ListRegions(ctx)
}

func (s *Service) CreateRegion(ctx context.Context, actor auth.ActorContext, name, code string) (string, error) {
	if !actor.CanAdminister() {
		return "", ErrForbidden
	}
	return s.Store.CreateRegion(ctx, name, code)
}

func (s *Service) ListHolidays(ctx context.Context, regionID string) ([]Holiday, error) {
	return s.Store.ListHolidays(ctx, regionID)
}

func (s *Service) CreateHoliday(ctx context.Context, actor auth.ActorContext, regionID, name string, date time.Time, optional bool) (string, error) {
	if !actor.CanAdminister() {
		return "", ErrForbidden
	}
	return s.Store.CreateHoliday(ctx, regionID, name, dateOnly(date), optional)
}

// WorkingDaysFor exposes the region-aware day count to callers that want a
// preview before submitting.
func (s *Service) WorkingDaysFor(ctx context.Context, employeeID string, start, end time.Time) (decimal.Decimal, error) {
	employee, err := s.Store.GetEmployee(ctx, employeeID)
	if err != nil {
		return decimal.Zero, err
	}

	holidays := HolidaySet{}
	if employee.Location != "" {
		regional, err := s.Store.HolidaysInRange(ctx, employee.Location, start, end)
		if err != nil {
			return decimal.Zero, err
		}
		holidays = NewHolidaySet(regional)
	}
	return WorkingDays(start, end, holidays)
}

// IsValidationError reports whether err is a rule violation rather than an
// infrastructure failure, so transports can map it to a 4xx.
func IsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
