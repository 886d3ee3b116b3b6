package leave

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// memStore is an in-memory StoreAPI that mirrors the transactional semantics
// of the pgx store: Tx methods are single critical sections under one lock.
type memStore struct {
	mu          sync.Mutex
	employees   map[string]EmployeeInfo
	regions     map[string]Region
	holidays    []Holiday
	balances    map[balanceKey]*Balance
	requests    map[string]*Request
	accrualRuns map[string]struct{}
	yearEndRuns map[string]struct{}
	seq         int
}

type balanceKey struct {
	employeeID string
	kind       Kind
	year       int
}

func newMemStore() *memStore {
	return &memStore{
		employees:   map[string]EmployeeInfo{},
		regions:     map[string]Region{},
		balances:    map[balanceKey]*Balance{},
		requests:    map[string]*Request{},
		accrualRuns: map[string]struct{}{},
		yearEndRuns: map[string]struct{}{},
	}
}

func (m *memStore) nextID() string {
	m.seq++
	return fmt.Sprintf("id-%d", m.seq)
}

func (m *memStore) addEmployee(e EmployeeInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
}

func (m *memStore) addRegionWithHoliday(name string, dates ...time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	region := Region{ID: m.nextID(), Name: name, Code: strings.ToUpper(name[:3]), IsActive: true}
	m.regions[region.ID] = region
	for _, d := range dates {
		m.holidays = append(m.holidays, Holiday{ID: m.nextID(), RegionID: region.ID, Name: "holiday", Date: dateOnly(d)})
	}
}

func (m *memStore) setBalance(employeeID string, kind Kind, year int, total, taken float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := balanceKey{employeeID, kind, year}
	m.balances[key] = &Balance{
		ID:         m.nextID(),
		EmployeeID: employeeID,
		Kind:       kind,
		Year:       year,
		Total:      decimal.NewFromFloat(total),
		Taken:      decimal.NewFromFloat(taken),
		Remaining:  decimal.NewFromFloat(total - taken),
	}
}

func (m *memStore) ListTypes(context.Context) ([]LeaveType, error) {
	var types []LeaveType
	for _, kind := range Kinds() {
		policy, _ := PolicyFor(kind)
		types = append(types, LeaveType{
			ID:              string(kind),
			Kind:            kind,
			MaxDays:         policy.MaxDays,
			AccrualRate:     policy.MonthlyAccrual,
			IsOptional:      policy.IsOptional,
			CanUseSameMonth: policy.CanUseSameMonth,
			IsActive:        true,
		})
	}
	return types, nil
}

func (m *memStore) CreateRegion(_ context.Context, name, code string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.regions {
		if strings.EqualFold(r.Name, name) {
			return "", ErrAlreadyExists
		}
	}
	region := Region{ID: m.nextID(), Name: name, Code: code, IsActive: true}
	m.regions[region.ID] = region
	return region.ID, nil
}

func (m *memStore) ListRegions(context.Context) ([]Region, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Region
	for _, r := range m.regions {
		out = append(out, r)
	}
	return out, nil
}

func (m *memStore) CreateHoliday(_ context.Context, regionID, name string, date time.Time, optional bool) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.regions[regionID]; !ok {
		return "", ErrNotFound
	}
	h := Holiday{ID: m.nextID(), RegionID: regionID, Name: name, Date: dateOnly(date), IsOptional: optional}
	m.holidays = append(m.holidays, h)
	return h.ID, nil
}

func (m *memStore) ListHolidays(_ context.Context, regionID string) ([]Holiday, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Holiday
	for _, h := range m.holidays {
		if regionID == "" || h.RegionID == regionID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *memStore) regionIDByName(name string) string {
	for id, r := range m.regions {
		if strings.EqualFold(r.Name, name) {
			return id
		}
	}
	return ""
}

func (m *memStore) HolidaysInRange(_ context.Context, regionName string, start, end time.Time) ([]Holiday, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	regionID := m.regionIDByName(regionName)
	var out []Holiday
	for _, h := range m.holidays {
		if h.RegionID != regionID {
			continue
		}
		if h.Date.Before(dateOnly(start)) || h.Date.After(dateOnly(end)) {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

func (m *memStore) IsRegionHoliday(_ context.Context, regionName string, date time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	regionID := m.regionIDByName(regionName)
	for _, h := range m.holidays {
		if h.RegionID == regionID && h.Date.Equal(dateOnly(date)) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) GetEmployee(_ context.Context, employeeID string) (EmployeeInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	employee, ok := m.employees[employeeID]
	if !ok {
		return EmployeeInfo{}, ErrNotFound
	}
	return employee, nil
}

func (m *memStore) ListActiveEmployees(context.Context) ([]EmployeeInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []EmployeeInfo
	for _, e := range m.employees {
		out = append(out, e)
	}
	return out, nil
}

func (m *memStore) SetProbationEndDate(_ context.Context, employeeID string, end time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	employee, ok := m.employees[employeeID]
	if !ok {
		return ErrNotFound
	}
	if employee.ProbationEndDate == nil {
		employee.ProbationEndDate = &end
		m.employees[employeeID] = employee
	}
	return nil
}

func (m *memStore) GetBalance(_ context.Context, employeeID string, kind Kind, year int) (Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	balance, ok := m.balances[balanceKey{employeeID, kind, year}]
	if !ok {
		return Balance{}, ErrBalanceNotFound
	}
	return *balance, nil
}

func (m *memStore) ListBalances(_ context.Context, employeeID string, year int) ([]Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Balance
	for key, balance := range m.balances {
		if key.employeeID == employeeID && key.year == year {
			out = append(out, *balance)
		}
	}
	return out, nil
}

func (m *memStore) SeedBalance(_ context.Context, employeeID string, kind Kind, year int, total decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := balanceKey{employeeID, kind, year}
	if _, ok := m.balances[key]; ok {
		return nil
	}
	m.balances[key] = &Balance{
		ID: m.nextID(), EmployeeID: employeeID, Kind: kind, Year: year,
		Total: total, Taken: decimal.Zero, Remaining: total, CarryForward: decimal.Zero,
	}
	return nil
}

func (m *memStore) AddEntitlement(_ context.Context, employeeID string, kind Kind, year int, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addEntitlementLocked(employeeID, kind, year, amount, false)
	return nil
}

func (m *memStore) addEntitlementLocked(employeeID string, kind Kind, year int, amount decimal.Decimal, isCarry bool) {
	key := balanceKey{employeeID, kind, year}
	balance, ok := m.balances[key]
	if !ok {
		balance = &Balance{ID: m.nextID(), EmployeeID: employeeID, Kind: kind, Year: year}
		m.balances[key] = balance
	}
	balance.Total = balance.Total.Add(amount)
	balance.Remaining = balance.Remaining.Add(amount)
	if isCarry {
		balance.CarryForward = amount
	}
}

func (m *memStore) CreateRequest(_ context.Context, req Request) (Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req.ID = m.nextID()
	stored := req
	m.requests[req.ID] = &stored
	return req, nil
}

func (m *memStore) GetRequest(_ context.Context, requestID string) (Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	request, ok := m.requests[requestID]
	if !ok {
		return Request{}, ErrNotFound
	}
	return *request, nil
}

func (m *memStore) ListRequests(_ context.Context, filter RequestFilter) ([]Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Request
	for _, request := range m.requests {
		if filter.EmployeeID != "" && request.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Status != "" && request.Status != filter.Status {
			continue
		}
		out = append(out, *request)
	}
	return out, nil
}

func (m *memStore) HasApprovedCompOff(_ context.Context, employeeID string, date time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, request := range m.requests {
		if request.EmployeeID == employeeID && request.Kind == KindCompOff &&
			request.Status == StatusApproved && request.StartDate.Equal(dateOnly(date)) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ApproveRequestTx(_ context.Context, requestID, approverID string, now time.Time) (Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	request, ok := m.requests[requestID]
	if !ok {
		return Request{}, ErrNotFound
	}
	if terminal(request.Status) {
		return Request{}, ErrInvalidState
	}

	balance, ok := m.balances[balanceKey{request.EmployeeID, request.Kind, request.StartDate.Year()}]
	if !ok {
		return Request{}, ErrBalanceNotFound
	}
	if balance.Remaining.LessThan(request.Days) {
		return Request{}, ErrInsufficientBalance
	}

	balance.Taken = balance.Taken.Add(request.Days)
	balance.Remaining = balance.Remaining.Sub(request.Days)
	request.Status = StatusApproved
	request.ApprovedBy = approverID
	request.ApprovedAt = &now
	return *request, nil
}

func (m *memStore) RejectRequestTx(_ context.Context, requestID, approverID, reason string, now time.Time) (Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	request, ok := m.requests[requestID]
	if !ok {
		return Request{}, ErrNotFound
	}
	if terminal(request.Status) {
		return Request{}, ErrInvalidState
	}

	request.Status = StatusRejected
	request.ApprovedBy = approverID
	request.ApprovedAt = &now
	request.RejectionReason = reason
	return *request, nil
}

func (m *memStore) AccrueMonthlyTx(_ context.Context, employeeID string, kind Kind, year int, month time.Month, amount decimal.Decimal) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	marker := fmt.Sprintf("%s|%d|%d", employeeID, year, int(month))
	if _, ran := m.accrualRuns[marker]; ran {
		return false, nil
	}
	m.accrualRuns[marker] = struct{}{}
	m.addEntitlementLocked(employeeID, kind, year, amount, false)
	return true, nil
}

func (m *memStore) CloseYearTx(_ context.Context, employeeID string, year int, carry, optionalAllocation decimal.Decimal) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	marker := fmt.Sprintf("%s|%d", employeeID, year)
	if _, ran := m.yearEndRuns[marker]; ran {
		return false, nil
	}
	m.yearEndRuns[marker] = struct{}{}

	if carry.IsPositive() {
		m.addEntitlementLocked(employeeID, KindAnnual, year+1, carry, true)
	}

	for _, kind := range []Kind{KindOptional, KindSick, KindCasual, KindCompOff} {
		if balance, ok := m.balances[balanceKey{employeeID, kind, year}]; ok {
			balance.Total = balance.Taken
			balance.Remaining = decimal.Zero
		}
	}

	key := balanceKey{employeeID, KindOptional, year + 1}
	if _, ok := m.balances[key]; !ok {
		m.balances[key] = &Balance{
			ID: m.nextID(), EmployeeID: employeeID, Kind: KindOptional, Year: year + 1,
			Total: optionalAllocation, Taken: decimal.Zero, Remaining: optionalAllocation,
		}
	}
	return true, nil
}

func (m *memStore) GrantCompOffTx(_ context.Context, employeeID string, workDate time.Time, reason string, now time.Time) (Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.addEntitlementLocked(employeeID, KindCompOff, workDate.Year(), decimal.NewFromInt(1), false)
	request := Request{
		ID: m.nextID(), EmployeeID: employeeID, Kind: KindCompOff,
		StartDate: dateOnly(workDate), EndDate: dateOnly(workDate),
		Days: decimal.NewFromInt(1), Reason: reason,
		Status: StatusApproved, AppliedAt: now, ApprovedAt: &now,
	}
	stored := request
	m.requests[request.ID] = &stored
	return request, nil
}

var _ StoreAPI = (*memStore)(nil)
