package reviewhandler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/auth"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/export"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/rating"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/review"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/transport/http/api"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/transport/http/middleware"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/transport/http/shared"
)

type Handler struct {
	Service *review.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *review.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

var statusNames = func() []string {
	names := make([]string, 0, len(review.AllStatuses))
	for _, status := range review.AllStatuses {
		names = append(names, string(status))
	}
	return names
}()

type transitionFunc func(ctx context.Context, actor auth.Actor, documentID string, req review.TransitionRequest) (review.Document, error)

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermReviewsRead, h.Perms)
	write := middleware.RequirePermission(auth.PermReviewsWrite, h.Perms)

	r.Route("/periods", func(r chi.Router) {
		r.With(read).Get("/", h.handleListPeriods)
		r.With(middleware.RequirePermission(auth.PermPeriodsManage, h.Perms)).Post("/", h.handleCreatePeriod)
	})

	r.Route("/reviews", func(r chi.Router) {
		r.With(read).Get("/", h.handleListDocuments)
		r.With(read).Get("/{documentID}", h.handleGetDocument)
		r.With(middleware.RequirePermission(auth.PermReviewsExport, h.Perms)).Get("/{documentID}/export.pdf", h.handleExportPDF)

		r.With(write).Post("/periods/{periodID}/outputs", h.handleAddOutput)
		r.With(write).Put("/{documentID}/outputs/{outputID}", h.handleUpdateOutput)
		r.With(write).Delete("/{documentID}/outputs/{outputID}", h.handleDeleteOutput)

		r.With(write).Post("/{documentID}/submit", h.handleTransition(h.Service.Submit))
		r.With(write).Post("/{documentID}/cancel", h.handleTransition(h.Service.Cancel))
		r.With(write).Post("/{documentID}/review", h.handleTransition(h.Service.Review))
		r.With(write).Post("/{documentID}/rate", h.handleTransition(h.Service.RateOutputs))
		r.With(write).Post("/{documentID}/finalize", h.handleTransition(h.Service.Finalize))
		r.With(write).Post("/{documentID}/return", h.handleTransition(h.Service.Return))
		r.With(write).Post("/{documentID}/reopen", h.handleTransition(h.Service.Reopen))
	})
}

type periodRequest struct {
	Name      string `json:"name" validate:"required,max=120"`
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
}

type outputRequest struct {
	Category                string `json:"category" validate:"required,max=200"`
	MajorFinalOutput        string `json:"majorFinalOutput" validate:"required,max=4000"`
	SuccessIndicatorTarget  string `json:"successIndicatorTarget" validate:"max=4000"`
	SuccessIndicatorMeasure string `json:"successIndicatorMeasure" validate:"max=4000"`
	ActualAccomplishments   string `json:"actualAccomplishments" validate:"max=4000"`
	Remarks                 string `json:"remarks" validate:"max=4000"`
}

func (o outputRequest) input() review.OutputInput {
	return review.OutputInput{
		Category:                o.Category,
		MajorFinalOutput:        o.MajorFinalOutput,
		SuccessIndicatorTarget:  o.SuccessIndicatorTarget,
		SuccessIndicatorMeasure: o.SuccessIndicatorMeasure,
		ActualAccomplishments:   o.ActualAccomplishments,
		Remarks:                 o.Remarks,
	}
}

type transitionRequest struct {
	ExpectedVersion *int                     `json:"expectedVersion" validate:"omitempty,gte=1"`
	ReviewComments  string                   `json:"reviewComments" validate:"max=4000"`
	FinalRemarks    string                   `json:"finalRemarks" validate:"max=4000"`
	Ratings         map[string]rating.Scores `json:"ratings"`
}

func (h *Handler) handleListPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.Service.ListPeriods(r.Context())
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, periods, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreatePeriod(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload periodRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}

	v := shared.NewValidator()
	start, _ := v.Date("startDate", payload.StartDate)
	end, _ := v.Date("endDate", payload.EndDate)
	v.DateRange("startDate", start, "endDate", end)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	period, err := h.Service.CreatePeriod(r.Context(), user, review.PeriodInput{Name: payload.Name, StartDate: start, EndDate: end})
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, period, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	q := r.URL.Query()

	v := shared.NewValidator()
	status := strings.TrimSpace(q.Get("status"))
	v.OneOf("status", status, statusNames)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	filter := review.Filter{
		EmployeeID: q.Get("employeeId"),
		DivisionID: q.Get("divisionId"),
		PeriodID:   q.Get("periodId"),
		Status:     review.Status(status),
	}
	docs, err := h.Service.ListDocuments(r.Context(), user, filter)
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(len(docs)))
	api.Success(w, docs, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	view, err := h.Service.GetDocument(r.Context(), user, chi.URLParam(r, "documentID"))
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, view, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAddOutput(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload outputRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	out, err := h.Service.AddOutput(r.Context(), user, chi.URLParam(r, "periodID"), payload.input())
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateOutput(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload outputRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	out, err := h.Service.UpdateOutput(r.Context(), user, chi.URLParam(r, "documentID"), chi.URLParam(r, "outputID"), payload.input())
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteOutput(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	if err := h.Service.DeleteOutput(r.Context(), user, chi.URLParam(r, "documentID"), chi.URLParam(r, "outputID")); err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

// handleTransition adapts one workflow action. An empty body is accepted
// for actions that carry no payload.
func (h *Handler) handleTransition(fn transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := middleware.GetUser(r.Context())
		var payload transitionRequest
		if !shared.DecodeOptionalJSON(w, r, &payload) {
			return
		}

		doc, err := fn(r.Context(), user, chi.URLParam(r, "documentID"), review.TransitionRequest{
			ExpectedVersion: payload.ExpectedVersion,
			ReviewComments:  payload.ReviewComments,
			FinalRemarks:    payload.FinalRemarks,
			Ratings:         payload.Ratings,
		})
		if err != nil {
			api.FromError(w, err, middleware.GetRequestID(r.Context()))
			return
		}
		api.Success(w, review.BuildView(user, doc), middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	view, err := h.Service.GetDocument(r.Context(), user, chi.URLParam(r, "documentID"))
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	var buf bytes.Buffer
	if err := export.ReviewPDF(&buf, view.Document); err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=ipcr-"+view.ID+".pdf")
	w.Header().Set("Last-Modified", view.UpdatedAt.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("ipcr export write failed", "documentId", view.ID, "err", err)
	}
}
