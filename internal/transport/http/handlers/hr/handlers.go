package hrhandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/hr"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	Service *hr.Service
}

func NewHandler(service *hr.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequireRole(auth.RoleManager, auth.RoleHR, auth.RoleAdmin)).Get("/", h.handleList)
		r.With(middleware.RequireRole(auth.RoleHR, auth.RoleAdmin)).Post("/", h.handleCreate)
		r.Get("/{employeeID}", h.handleGet)
		r.With(middleware.RequireRole(auth.RoleHR, auth.RoleAdmin)).Put("/{employeeID}", h.handleUpdate)
		r.With(middleware.RequireRole(auth.RoleHR, auth.RoleAdmin)).Post("/{employeeID}/deactivate", h.handleDeactivate)
		r.With(middleware.RequireRole(auth.RoleHR, auth.RoleAdmin)).Post("/{employeeID}/reactivate", h.handleReactivate)
		r.With(middleware.RequireRole(auth.RoleHR, auth.RoleAdmin)).Put("/{employeeID}/probation-end", h.handleProbationEnd)
	})
}

func failDomain(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, hr.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", requestID)
	case errors.Is(err, hr.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
	case errors.Is(err, hr.ErrAlreadyExists):
		api.Fail(w, http.StatusConflict, "already_exists", "employee with this email already exists", requestID)
	case errors.Is(err, hr.ErrInvalidInput):
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal", "operation failed", requestID)
	}
}

type employeePayload struct {
	FirstName     string `json:"firstName" validate:"required"`
	LastName      string `json:"lastName" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Designation   string `json:"designation"`
	DateOfJoining string `json:"dateOfJoining"`
	Location      string `json:"location"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	var payload employeePayload
	if !shared.DecodeAndValidate(w, r, &payload, requestID) {
		return
	}

	input := hr.CreateEmployeeInput{
		FirstName:   payload.FirstName,
		LastName:    payload.LastName,
		Email:       payload.Email,
		Designation: payload.Designation,
		Location:    payload.Location,
	}
	if payload.DateOfJoining != "" {
		joined, err := shared.ParseDate(payload.DateOfJoining)
		if err != nil || joined.IsZero() {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid date of joining", requestID)
			return
		}
		input.DateOfJoining = &joined
	}

	employee, err := h.Service.CreateEmployee(r.Context(), actor, input)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Created(w, employee, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	employee, err := h.Service.GetEmployee(r.Context(), actor, chi.URLParam(r, "employeeID"))
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Success(w, employee, requestID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	page := shared.ParsePagination(r, 100, 500)
	employees, err := h.Service.ListEmployees(r.Context(), actor, hr.EmployeeFilter{
		Status:   r.URL.Query().Get("status"),
		Location: r.URL.Query().Get("location"),
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Success(w, employees, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	var payload employeePayload
	if !shared.DecodeAndValidate(w, r, &payload, requestID) {
		return
	}

	input := hr.UpdateEmployeeInput{
		FirstName:   payload.FirstName,
		LastName:    payload.LastName,
		Email:       payload.Email,
		Designation: payload.Designation,
		Location:    payload.Location,
	}
	if payload.DateOfJoining != "" {
		joined, err := shared.ParseDate(payload.DateOfJoining)
		if err != nil || joined.IsZero() {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid date of joining", requestID)
			return
		}
		input.DateOfJoining = &joined
	}

	employee, err := h.Service.UpdateEmployee(r.Context(), actor, chi.URLParam(r, "employeeID"), input)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Success(w, employee, requestID)
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	if err := h.Service.DeactivateEmployee(r.Context(), actor, chi.URLParam(r, "employeeID")); err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Success(w, map[string]string{"status": hr.StatusInactive}, requestID)
}

func (h *Handler) handleReactivate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	if err := h.Service.ReactivateEmployee(r.Context(), actor, chi.URLParam(r, "employeeID")); err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Success(w, map[string]string{"status": hr.StatusActive}, requestID)
}

type probationEndPayload struct {
	ProbationEndDate string `json:"probationEndDate" validate:"required"`
}

func (h *Handler) handleProbationEnd(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	var payload probationEndPayload
	if !shared.DecodeAndValidate(w, r, &payload, requestID) {
		return
	}
	end, err := shared.ParseDate(payload.ProbationEndDate)
	if err != nil || end.IsZero() {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid probation end date", requestID)
		return
	}

	if err := h.Service.OverrideProbationEndDate(r.Context(), actor, chi.URLParam(r, "employeeID"), end); err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Success(w, map[string]string{"status": "updated"}, requestID)
}
