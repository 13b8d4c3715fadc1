package attendancehandler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/attendance"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/audit"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/auth"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/export"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/requestctx"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/transport/http/api"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/transport/http/middleware"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/transport/http/shared"
)

const (
	entityDTRLog = "dtr_log"

	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

type Handler struct {
	Service *attendance.Service
	Perms   middleware.PermissionStore
	Audit   AuditRecorder
}

func NewHandler(service *attendance.Service, perms middleware.PermissionStore, recorder AuditRecorder) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: recorder}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermDTRRead, h.Perms)
	exports := middleware.RequirePermission(auth.PermDTRExport, h.Perms)

	r.Route("/dtr", func(r chi.Router) {
		r.With(read).Get("/schedule", h.handleSchedule)
		r.With(middleware.RequirePermission(auth.PermDTROffice, h.Perms)).Get("/office/summary", h.handleOfficeSummary)

		r.With(read).Get("/{employeeID}/logs", h.handleListLogs)
		r.With(read).Get("/{employeeID}/summary", h.handleSummary)
		r.With(exports).Get("/{employeeID}/export.pdf", h.handleExport(export.DTRPDF, "application/pdf", "pdf"))
		r.With(exports).Get("/{employeeID}/export.xlsx", h.handleExport(export.DTRWorkbook, contentTypeXLSX, "xlsx"))

		r.With(read).Get("/{employeeID}/{date}", h.handleGetLog)
		r.With(middleware.RequirePermission(auth.PermDTRWrite, h.Perms)).Put("/{employeeID}/{date}", h.handleUpsertLog)
	})
}

type logRequest struct {
	AMArrival   string `json:"amArrival"`
	AMDeparture string `json:"amDeparture"`
	PMArrival   string `json:"pmArrival"`
	PMDeparture string `json:"pmDeparture"`
	Remarks     string `json:"remarks" validate:"max=1000"`
}

// punches parses the optional punch times; a blank value is a missing punch.
func (p logRequest) punches(v *shared.Validator) attendance.Punches {
	parse := func(field, raw string) *attendance.TimeOfDay {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil
		}
		t, err := attendance.ParseTimeOfDay(raw)
		if err != nil {
			v.Add(field, shared.FieldLabel(field)+" must be a time in HH:MM format")
			return nil
		}
		return &t
	}
	return attendance.Punches{
		AMArrival:   parse("amArrival", p.AMArrival),
		AMDeparture: parse("amDeparture", p.AMDeparture),
		PMArrival:   parse("pmArrival", p.PMArrival),
		PMDeparture: parse("pmDeparture", p.PMDeparture),
	}
}

func (h *Handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Service.Schedule(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpsertLog(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	var payload logRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}

	v := shared.NewValidator()
	date, _ := v.Date("date", chi.URLParam(r, "date"))
	punches := payload.punches(v)
	if v.Reject(w, reqID) {
		return
	}

	employeeID := chi.URLParam(r, "employeeID")
	log, err := h.Service.UpsertLog(r.Context(), user, employeeID, date, attendance.LogInput{Punches: punches, Remarks: payload.Remarks})
	if err != nil {
		api.FromError(w, err, reqID)
		return
	}

	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), audit.Entry{
			ActorID:    user.UserID,
			Action:     "dtr.upsert",
			EntityType: entityDTRLog,
			EntityID:   log.ID,
			RequestID:  reqID,
			IP:         requestctx.GetClientIP(r.Context()),
			After:      log,
		}); err != nil {
			slog.Warn("audit log failed", "action", "dtr.upsert", "err", err)
		}
	}

	api.Success(w, log, reqID)
}

func (h *Handler) handleGetLog(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	v := shared.NewValidator()
	date, _ := v.Date("date", chi.URLParam(r, "date"))
	if v.Reject(w, reqID) {
		return
	}

	log, err := h.Service.GetLog(r.Context(), user, chi.URLParam(r, "employeeID"), date)
	if err != nil {
		api.FromError(w, err, reqID)
		return
	}
	api.Success(w, log, reqID)
}

func (h *Handler) handleListLogs(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	month, ok := h.month(w, r)
	if !ok {
		return
	}
	logs, err := h.Service.ListLogs(r.Context(), user, chi.URLParam(r, "employeeID"), month)
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, logs, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	month, ok := h.month(w, r)
	if !ok {
		return
	}
	report, err := h.Service.MonthlySummary(r.Context(), user, chi.URLParam(r, "employeeID"), month)
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, report, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleOfficeSummary(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	month, ok := h.month(w, r)
	if !ok {
		return
	}
	rows, err := h.Service.OfficeSummary(r.Context(), user, month)
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rows, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExport(render func(io.Writer, attendance.MonthlyReport) error, contentType, ext string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := middleware.GetUser(r.Context())
		reqID := middleware.GetRequestID(r.Context())
		month, ok := h.month(w, r)
		if !ok {
			return
		}
		report, err := h.Service.MonthlySummary(r.Context(), user, chi.URLParam(r, "employeeID"), month)
		if err != nil {
			api.FromError(w, err, reqID)
			return
		}

		var buf bytes.Buffer
		if err := render(&buf, report); err != nil {
			slog.Error("dtr export failed", "employeeId", report.Employee.ID, "month", month.String(), "err", err)
			api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to render DTR", reqID)
			return
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", "attachment; filename=dtr-"+report.Employee.ID+"-"+month.String()+"."+ext)
		w.WriteHeader(http.StatusOK)
		if _, err := buf.WriteTo(w); err != nil {
			slog.Warn("dtr export write failed", "err", err)
		}
	}
}

// month reads ?month=YYYY-MM, defaulting to the current month.
func (h *Handler) month(w http.ResponseWriter, r *http.Request) (attendance.Month, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("month"))
	if raw == "" {
		return attendance.MonthOf(time.Now()), true
	}
	month, err := attendance.ParseMonth(raw)
	if err != nil {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "month", Reason: "Month must be in YYYY-MM format"}})
		return attendance.Month{}, false
	}
	return month, true
}
