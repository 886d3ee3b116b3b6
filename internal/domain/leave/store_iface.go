package leave

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// StoreAPI is the persistence contract the engine runs against. The pgx
// implementation lives in store_data.go / store_accrual.go; tests run the
// engine against an in-memory implementation.
//
// Methods with the Tx suffix are critical sections: the read of a ledger row
// and the dependent write commit atomically, or not at all.
type StoreAPI interface {
	ListTypes(ctx context.Context) ([]LeaveType, error)

	CreateRegion(ctx context.Context, name, code string) (string, error)
	ListRegions(ctx context.Context) ([]Region, error)
	CreateHoliday(ctx context.Context, regionID, name string, date time.Time, optional bool) (string, error)
	ListHolidays(ctx context.Context, regionID string) ([]Holiday, error)
	HolidaysInRange(ctx context.Context, regionName string, start, end time.Time) ([]Holiday, error)
	IsRegionHoliday(ctx context.Context, regionName string, date time.Time) (bool, error)

	GetEmployee(ctx context.Context, employeeID string) (EmployeeInfo, error)
	ListActiveEmployees(ctx context.Context) ([]EmployeeInfo, error)
	SetProbationEndDate(ctx context.Context, employeeID string, end time.Time) error

	GetBalance(ctx context.Context, employeeID string, kind Kind, year int) (Balance, error)
	ListBalances(ctx context.Context, employeeID string, year int) ([]Balance, error)
	SeedBalance(ctx context.Context, employeeID string, kind Kind, year int, total decimal.Decimal) error
	AddEntitlement(ctx context.Context, employeeID string, kind Kind, year int, amount decimal.Decimal) error

	CreateRequest(ctx context.Context, req Request) (Request, error)
	GetRequest(ctx context.Context, requestID string) (Request, error)
	ListRequests(ctx context.Context, filter RequestFilter) ([]Request, error)
	HasApprovedCompOff(ctx context.Context, employeeID string, date time.Time) (bool, error)

	// ApproveRequestTx flips a new/pending request to approved and deducts
	// its days from the (employee, kind, start-year) ledger row in one
	// transaction. Returns ErrInvalidState for terminal requests and
	// ErrInsufficientBalance when the remaining-balance guard fails at
	// commit time.
	ApproveRequestTx(ctx context.Context, requestID, approverID string, now time.Time) (Request, error)

	// RejectRequestTx flips a new/pending request to rejected. The ledger is
	// never touched.
	RejectRequestTx(ctx context.Context, requestID, approverID, reason string, now time.Time) (Request, error)

	// AccrueMonthlyTx grants one month's entitlement to the employee's
	// balance for (kind, year). The per-employee month marker commits with
	// the balance update, so re-running the same period reports false and
	// changes nothing.
	AccrueMonthlyTx(ctx context.Context, employeeID string, kind Kind, year int, month time.Month, amount decimal.Decimal) (bool, error)

	// CloseYearTx performs one employee's year-end rollover: carries the
	// given amount into next year's annual balance, forfeits the remainder
	// of the non-carrying kinds, and seeds next year's optional allocation.
	// Guarded by a per-employee year marker; returns false when the year was
	// already closed for the employee.
	CloseYearTx(ctx context.Context, employeeID string, year int, carry, optionalAllocation decimal.Decimal) (bool, error)

	// GrantCompOffTx credits one comp-off day and records the approved
	// comp-off grant for the worked date in one transaction.
	GrantCompOffTx(ctx context.Context, employeeID string, workDate time.Time, reason string, now time.Time) (Request, error)
}
