package hr

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"hrms/internal/domain/auth"
)

// StoreAPI is the persistence surface the service depends on; *Store is the
// pgx implementation and tests supply an in-memory one.
type StoreAPI interface {
	CreateEmployee(ctx context.Context, e Employee) (Employee, error)
	GetEmployee(ctx context.Context, employeeID string) (Employee, error)
	GetEmployeeByEmail(ctx context.Context, email string) (Employee, error)
	ListEmployees(ctx context.Context, filter EmployeeFilter) ([]Employee, error)
	UpdateEmployee(ctx context.Context, e Employee) (Employee, error)
	SetEmployeeStatus(ctx context.Context, employeeID, status string) error
	SetProbationEndDate(ctx context.Context, employeeID string, end time.Time) error
}

// BalanceInitializer seeds an employee's starting leave balances. The leave
// service provides it; hiring wires the two domains together.
type BalanceInitializer interface {
	InitializeEmployeeBalances(ctx context.Context, employeeID string, year int) error
}

type Service struct {
	Store    StoreAPI
	Balances BalanceInitializer

	now func() time.Time
}

func NewService(store StoreAPI, balances BalanceInitializer) *Service {
	return &Service{Store: store, Balances: balances, now: time.Now}
}

type CreateEmployeeInput struct {
	FirstName     string
	LastName      string
	Email         string
	Designation   string
	DateOfJoining *time.Time
	Location      string
}

// CreateEmployee records a new hire and seeds the joining year's leave
// balances. Balance seeding is best-effort: the employee row is already
// committed, and re-seeding is idempotent, so a failure is logged rather
// than unwinding the hire.
func (s *Service) CreateEmployee(ctx context.Context, actor auth.ActorContext, input CreateEmployeeInput) (Employee, error) {
	if !actor.CanAdminister() {
		return Employee{}, ErrForbidden
	}
	if err := validateEmployeeInput(input.FirstName, input.LastName, input.Email); err != nil {
		return Employee{}, err
	}

	employee, err := s.Store.CreateEmployee(ctx, Employee{
		FirstName:     strings.TrimSpace(input.FirstName),
		LastName:      strings.TrimSpace(input.LastName),
		Email:         strings.ToLower(strings.TrimSpace(input.Email)),
		Designation:   strings.TrimSpace(input.Designation),
		DateOfJoining: input.DateOfJoining,
		Location:      strings.TrimSpace(input.Location),
		Status:        StatusActive,
	})
	if err != nil {
		return Employee{}, err
	}

	year := s.now().Year()
	if input.DateOfJoining != nil {
		year = input.DateOfJoining.Year()
	}
	if err := s.Balances.InitializeEmployeeBalances(ctx, employee.ID, year); err != nil {
		slog.Warn("seeding leave balances for new employee failed",
			"employeeId", employee.ID, "year", year, "err", err)
	}
	return employee, nil
}

func (s *Service) GetEmployee(ctx context.Context, actor auth.ActorContext, employeeID string) (Employee, error) {
	if actor.Role == auth.RoleEmployee && actor.EmployeeID != employeeID {
		return Employee{}, ErrForbidden
	}
	return s.Store.GetEmployee(ctx, employeeID)
}

func (s *Service) ListEmployees(ctx context.Context, actor auth.ActorContext, filter EmployeeFilter) ([]Employee, error) {
	if actor.Role == auth.RoleEmployee {
		return nil, ErrForbidden
	}
	return s.Store.ListEmployees(ctx, filter)
}

type UpdateEmployeeInput struct {
	FirstName     string
	LastName      string
	Email         string
	Designation   string
	DateOfJoining *time.Time
	Location      string
}

func (s *Service) UpdateEmployee(ctx context.Context, actor auth.ActorContext, employeeID string, input UpdateEmployeeInput) (Employee, error) {
	if !actor.CanAdminister() {
		return Employee{}, ErrForbidden
	}
	if err := validateEmployeeInput(input.FirstName, input.LastName, input.Email); err != nil {
		return Employee{}, err
	}

	current, err := s.Store.GetEmployee(ctx, employeeID)
	if err != nil {
		return Employee{}, err
	}

	current.FirstName = strings.TrimSpace(input.FirstName)
	current.LastName = strings.TrimSpace(input.LastName)
	current.Email = strings.ToLower(strings.TrimSpace(input.Email))
	current.Designation = strings.TrimSpace(input.Designation)
	current.DateOfJoining = input.DateOfJoining
	current.Location = strings.TrimSpace(input.Location)
	return s.Store.UpdateEmployee(ctx, current)
}

// DeactivateEmployee removes the employee from active rosters; accrual and
// year-end runs only consider active employees.
func (s *Service) DeactivateEmployee(ctx context.Context, actor auth.ActorContext, employeeID string) error {
	if !actor.CanAdminister() {
		return ErrForbidden
	}
	return s.Store.SetEmployeeStatus(ctx, employeeID, StatusInactive)
}

func (s *Service) ReactivateEmployee(ctx context.Context, actor auth.ActorContext, employeeID string) error {
	if !actor.CanAdminister() {
		return ErrForbidden
	}
	return s.Store.SetEmployeeStatus(ctx, employeeID, StatusActive)
}

// OverrideProbationEndDate lets HR shorten or extend a probation window; the
// engine otherwise derives it from the joining date.
func (s *Service) OverrideProbationEndDate(ctx context.Context, actor auth.ActorContext, employeeID string, end time.Time) error {
	if !actor.CanAdminister() {
		return ErrForbidden
	}
	if _, err := s.Store.GetEmployee(ctx, employeeID); err != nil {
		return err
	}
	return s.Store.SetProbationEndDate(ctx, employeeID, end)
}

func validateEmployeeInput(firstName, lastName, email string) error {
	if strings.TrimSpace(firstName) == "" || strings.TrimSpace(lastName) == "" {
		return fmt.Errorf("%w: first and last name are required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil {
		return fmt.Errorf("%w: email %q is not valid", ErrInvalidInput, email)
	}
	return nil
}
