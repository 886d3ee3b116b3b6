package leavehandler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/leave"
	"hrms/internal/platform/jobs"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	Service *leave.Service

	// Jobs, when configured, queues manual accrual/year-end triggers instead
	// of running them inline.
	Jobs *jobs.Client
}

func NewHandler(service *leave.Service, jobsClient *jobs.Client) *Handler {
	return &Handler{Service: service, Jobs: jobsClient}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.Get("/types", h.handleListTypes)
		r.Get("/regions", h.handleListRegions)
		r.With(middleware.RequireRole(auth.RoleHR, auth.RoleAdmin)).Post("/regions", h.handleCreateRegion)
		r.Get("/holidays", h.handleListHolidays)
		r.With(middleware.RequireRole(auth.RoleHR, auth.RoleAdmin)).Post("/holidays", h.handleCreateHoliday)
		r.Get("/balances", h.handleListBalances)
		r.With(middleware.RequireRole(auth.RoleHR, auth.RoleAdmin)).Post("/balances/adjust", h.handleAdjustBalance)
		r.With(middleware.RequireRole(auth.RoleHR, auth.RoleAdmin)).Post("/balances/initialize", h.handleInitializeBalances)
		r.Get("/working-days", h.handleWorkingDays)
		r.Get("/requests", h.handleListRequests)
		r.Post("/requests", h.handleSubmitRequest)
		r.Get("/requests/{requestID}", h.handleGetRequest)
		r.With(middleware.RequireRole(auth.RoleManager, auth.RoleHR, auth.RoleAdmin)).
			Post("/requests/{requestID}/approve", h.handleApproveRequest)
		r.With(middleware.RequireRole(auth.RoleManager, auth.RoleHR, auth.RoleAdmin)).
			Post("/requests/{requestID}/reject", h.handleRejectRequest)
		r.Post("/comp-off", h.handleEarnCompOff)
		r.With(middleware.RequireRole(auth.RoleHR, auth.RoleAdmin)).Post("/accrual/run", h.handleRunAccrual)
		r.With(middleware.RequireRole(auth.RoleHR, auth.RoleAdmin)).Post("/year-end/run", h.handleRunYearEnd)
	})
}

// failDomain translates engine errors into envelope responses.
func failDomain(w http.ResponseWriter, err error, requestID string) {
	if verr, ok := leave.IsValidationError(err); ok {
		api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "leave validation failed",
			map[string]any{"errors": verr.Errors, "warnings": verr.Warnings}, requestID)
		return
	}
	switch {
	case errors.Is(err, leave.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", requestID)
	case errors.Is(err, leave.ErrNotFound), errors.Is(err, leave.ErrBalanceNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	case errors.Is(err, leave.ErrInvalidState):
		api.Fail(w, http.StatusConflict, "invalid_state", "request is already decided", requestID)
	case errors.Is(err, leave.ErrAlreadyExists):
		api.Fail(w, http.StatusConflict, "already_exists", err.Error(), requestID)
	case errors.Is(err, leave.ErrInsufficientBalance):
		api.Fail(w, http.StatusConflict, "insufficient_balance", "balance changed concurrently, request left pending", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal", "operation failed", requestID)
	}
}

func (h *Handler) handleListTypes(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	types, err := h.Service.ListTypes(r.Context())
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Success(w, types, requestID)
}

func (h *Handler) handleListRegions(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	regions, err := h.Service.ListRegions(r.Context())
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Success(w, regions, requestID)
}

type createRegionPayload struct {
	Name string `json:"name" validate:"required"`
	Code string `json:"code" validate:"required"`
}

func (h *Handler) handleCreateRegion(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	var payload createRegionPayload
	if !shared.DecodeAndValidate(w, r, &payload, requestID) {
		return
	}

	id, err := h.Service.CreateRegion(r.Context(), actor, payload.Name, payload.Code)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Created(w, map[string]string{"id": id}, requestID)
}

func (h *Handler) handleListHolidays(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	holidays, err := h.Service.ListHolidays(r.Context(), r.URL.Query().Get("regionId"))
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Success(w, holidays, requestID)
}

type createHolidayPayload struct {
	RegionID   string `json:"regionId" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Date       string `json:"date" validate:"required"`
	IsOptional bool   `json:"isOptional"`
}

func (h *Handler) handleCreateHoliday(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	var payload createHolidayPayload
	if !shared.DecodeAndValidate(w, r, &payload, requestID) {
		return
	}
	date, err := shared.ParseDate(payload.Date)
	if err != nil || date.IsZero() {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid date", requestID)
		return
	}

	id, err := h.Service.CreateHoliday(r.Context(), actor, payload.RegionID, payload.Name, date, payload.IsOptional)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Created(w, map[string]string{"id": id}, requestID)
}

func (h *Handler) handleListBalances(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	employeeID := r.URL.Query().Get("employeeId")
	if actor.Role == auth.RoleEmployee || employeeID == "" {
		employeeID = actor.EmployeeID
	}

	year := time.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, ok := parseYear(raw)
		if !ok {
			api.Fail(w, http.StatusBadRequest, "invalid_request", "invalid year", requestID)
			return
		}
		year = parsed
	}

	balances, err := h.Service.GetLeaveBalances(r.Context(), employeeID, year)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Success(w, balances, requestID)
}

type adjustBalancePayload struct {
	EmployeeID string  `json:"employeeId" validate:"required"`
	Kind       string  `json:"kind" validate:"required"`
	Year       int     `json:"year" validate:"required,gte=2000"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
}

func (h *Handler) handleAdjustBalance(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	var payload adjustBalancePayload
	if !shared.DecodeAndValidate(w, r, &payload, requestID) {
		return
	}
	kind, err := leave.ParseKind(payload.Kind)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), requestID)
		return
	}

	if err := h.Service.AdjustBalance(r.Context(), actor, payload.EmployeeID, kind, payload.Year, decimal.NewFromFloat(payload.Amount)); err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Success(w, map[string]string{"status": "adjusted"}, requestID)
}

type initializeBalancesPayload struct {
	EmployeeID string `json:"employeeId" validate:"required"`
	Year       int    `json:"year" validate:"required,gte=2000"`
}

func (h *Handler) handleInitializeBalances(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload initializeBalancesPayload
	if !shared.DecodeAndValidate(w, r, &payload, requestID) {
		return
	}

	if err := h.Service.InitializeEmployeeBalances(r.Context(), payload.EmployeeID, payload.Year); err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Success(w, map[string]string{"status": "initialized"}, requestID)
}

func (h *Handler) handleWorkingDays(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	employeeID := r.URL.Query().Get("employeeId")
	if actor.Role == auth.RoleEmployee || employeeID == "" {
		employeeID = actor.EmployeeID
	}

	start, err := shared.ParseDate(r.URL.Query().Get("start"))
	if err != nil || start.IsZero() {
		api.Fail(w, http.StatusBadRequest, "invalid_request", "invalid start date", requestID)
		return
	}
	end, err := shared.ParseDate(r.URL.Query().Get("end"))
	if err != nil || end.IsZero() {
		api.Fail(w, http.StatusBadRequest, "invalid_request", "invalid end date", requestID)
		return
	}

	days, err := h.Service.WorkingDaysFor(r.Context(), employeeID, start, end)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Success(w, map[string]any{"workingDays": days}, requestID)
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	filter := leave.RequestFilter{
		EmployeeID: r.URL.Query().Get("employeeId"),
		Status:     r.URL.Query().Get("status"),
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		if from, err := shared.ParseDate(raw); err == nil && !from.IsZero() {
			filter.From = &from
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if to, err := shared.ParseDate(raw); err == nil && !to.IsZero() {
			filter.To = &to
		}
	}
	page := shared.ParsePagination(r, 100, 500)
	filter.Limit = page.Limit
	filter.Offset = page.Offset

	requests, err := h.Service.ListRequests(r.Context(), actor, filter)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Success(w, requests, requestID)
}

type submitRequestPayload struct {
	EmployeeID    string  `json:"employeeId"`
	Kind          string  `json:"kind" validate:"required"`
	StartDate     string  `json:"startDate" validate:"required"`
	EndDate       string  `json:"endDate" validate:"required"`
	Days          float64 `json:"days" validate:"gte=0"`
	IsHalfDay     bool    `json:"isHalfDay"`
	HalfDayPeriod string  `json:"halfDayPeriod" validate:"omitempty,oneof=first_half second_half"`
	Reason        string  `json:"reason"`
}

func (h *Handler) handleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	var payload submitRequestPayload
	if !shared.DecodeAndValidate(w, r, &payload, requestID) {
		return
	}
	kind, err := leave.ParseKind(payload.Kind)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), requestID)
		return
	}
	start, err := shared.ParseDate(payload.StartDate)
	if err != nil || start.IsZero() {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid start date", requestID)
		return
	}
	end, err := shared.ParseDate(payload.EndDate)
	if err != nil || end.IsZero() {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid end date", requestID)
		return
	}

	employeeID := payload.EmployeeID
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}

	request, err := h.Service.SubmitLeave(r.Context(), actor, leave.SubmitInput{
		EmployeeID:    employeeID,
		Kind:          kind,
		StartDate:     start,
		EndDate:       end,
		Days:          decimal.NewFromFloat(payload.Days),
		IsHalfDay:     payload.IsHalfDay,
		HalfDayPeriod: payload.HalfDayPeriod,
		Reason:        payload.Reason,
	})
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Created(w, request, requestID)
}

func (h *Handler) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	request, err := h.Service.GetRequest(r.Context(), actor, chi.URLParam(r, "requestID"))
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Success(w, request, requestID)
}

func (h *Handler) handleApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, leave.ActionApprove, "")
}

type rejectPayload struct {
	Reason string `json:"reason"`
}

func (h *Handler) handleRejectRequest(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload rejectPayload
	if !shared.DecodeAndValidate(w, r, &payload, requestID) {
		return
	}
	h.decide(w, r, leave.ActionReject, payload.Reason)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, action, reason string) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	request, err := h.Service.DecideLeave(r.Context(), actor, chi.URLParam(r, "requestID"), action, reason)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Success(w, request, requestID)
}

type compOffPayload struct {
	EmployeeID string `json:"employeeId"`
	Date       string `json:"date" validate:"required"`
	Reason     string `json:"reason"`
}

func (h *Handler) handleEarnCompOff(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	var payload compOffPayload
	if !shared.DecodeAndValidate(w, r, &payload, requestID) {
		return
	}
	workDate, err := shared.ParseDate(payload.Date)
	if err != nil || workDate.IsZero() {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid date", requestID)
		return
	}

	employeeID := payload.EmployeeID
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}

	request, err := h.Service.EarnCompOff(r.Context(), actor, employeeID, workDate, payload.Reason)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Created(w, request, requestID)
}

type runAccrualPayload struct {
	AsOf string `json:"asOf"`
}

func (h *Handler) handleRunAccrual(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload runAccrualPayload
	if r.ContentLength > 0 && !shared.DecodeAndValidate(w, r, &payload, requestID) {
		return
	}

	if h.Jobs != nil {
		if err := h.Jobs.EnqueueAccrual(r.Context(), jobs.AccrualPayload{AsOf: payload.AsOf}); err != nil {
			failDomain(w, err, requestID)
			return
		}
		api.Success(w, map[string]string{"status": "queued"}, requestID)
		return
	}

	asOf := time.Now()
	if payload.AsOf != "" {
		parsed, err := shared.ParseDate(payload.AsOf)
		if err != nil || parsed.IsZero() {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid asOf date", requestID)
			return
		}
		asOf = parsed
	}

	summary, err := h.Service.RunMonthlyAccrual(r.Context(), asOf)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Success(w, summary, requestID)
}

type runYearEndPayload struct {
	Year int `json:"year"`
}

func (h *Handler) handleRunYearEnd(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload runYearEndPayload
	if r.ContentLength > 0 && !shared.DecodeAndValidate(w, r, &payload, requestID) {
		return
	}
	if payload.Year == 0 {
		payload.Year = time.Now().Year() - 1
	}

	if h.Jobs != nil {
		if err := h.Jobs.EnqueueYearEnd(r.Context(), jobs.YearEndPayload{Year: payload.Year}); err != nil {
			failDomain(w, err, requestID)
			return
		}
		api.Success(w, map[string]string{"status": "queued"}, requestID)
		return
	}

	summary, err := h.Service.RunYearEnd(r.Context(), payload.Year)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Success(w, summary, requestID)
}

func parseYear(raw string) (int, bool) {
	year, err := strconv.Atoi(raw)
	if err != nil || year < 2000 || year > 2200 {
		return 0, false
	}
	return year, true
}
