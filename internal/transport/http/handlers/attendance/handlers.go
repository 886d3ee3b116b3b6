package attendancehandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/attendance"
	"hrms/internal/domain/auth"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	Service *attendance.Service
}

func NewHandler(service *attendance.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.Post("/check-in", h.handleCheckIn)
		r.Post("/check-out", h.handleCheckOut)
		r.Get("/today", h.handleToday)
		r.Get("/", h.handleList)
	})
}

func failDomain(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, attendance.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", requestID)
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		api.Fail(w, http.StatusConflict, "already_checked_in", "already checked in for today", requestID)
	case errors.Is(err, attendance.ErrNotCheckedIn):
		api.Fail(w, http.StatusConflict, "not_checked_in", "check in before checking out", requestID)
	case errors.Is(err, attendance.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "attendance record not found", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal", "operation failed", requestID)
	}
}

// recordView decorates a record with its derived fields for the API.
type recordView struct {
	attendance.Record
	Status      string  `json:"status"`
	WorkedHours float64 `json:"workedHours"`
}

func view(record attendance.Record) recordView {
	return recordView{
		Record:      record,
		Status:      record.Status(),
		WorkedHours: record.WorkedHours().Hours(),
	}
}

type checkPayload struct {
	EmployeeID string `json:"employeeId"`
}

func targetEmployee(actor auth.ActorContext, payload checkPayload) string {
	if payload.EmployeeID != "" {
		return payload.EmployeeID
	}
	return actor.EmployeeID
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	var payload checkPayload
	if r.ContentLength > 0 && !shared.DecodeAndValidate(w, r, &payload, requestID) {
		return
	}

	record, err := h.Service.CheckIn(r.Context(), actor, targetEmployee(actor, payload))
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Created(w, view(record), requestID)
}

func (h *Handler) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	var payload checkPayload
	if r.ContentLength > 0 && !shared.DecodeAndValidate(w, r, &payload, requestID) {
		return
	}

	record, err := h.Service.CheckOut(r.Context(), actor, targetEmployee(actor, payload))
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Success(w, view(record), requestID)
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	employeeID := r.URL.Query().Get("employeeId")
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}

	record, err := h.Service.GetToday(r.Context(), actor, employeeID)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Success(w, view(record), requestID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	filter := attendance.RecordFilter{
		EmployeeID: r.URL.Query().Get("employeeId"),
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

	records, err := h.Service.ListRecords(r.Context(), actor, filter)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	views := make([]recordView, 0, len(records))
	for _, record := range records {
		views = append(views, view(record))
	}
	api.Success(w, views, requestID)
}
