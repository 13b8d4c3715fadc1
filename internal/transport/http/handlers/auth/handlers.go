package authhandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/audit"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/auth"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/requestctx"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/transport/http/api"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/transport/http/middleware"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/transport/http/shared"
)

type LoginService interface {
	Login(ctx context.Context, email, password string) (string, auth.Actor, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

type Handler struct {
	Service LoginService
	Audit   AuditRecorder
}

func NewHandler(service LoginService, recorder AuditRecorder) *Handler {
	return &Handler{Service: service, Audit: recorder}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.HandleLogin)
		r.With(middleware.RequireAuth).Get("/me", h.HandleMe)
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	var payload loginRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}

	token, actor, err := h.Service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
			return
		}
		slog.Error("login failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", reqID)
		return
	}

	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), audit.Entry{
			ActorID:    actor.UserID,
			Action:     "auth.login",
			EntityType: "user",
			EntityID:   actor.UserID,
			RequestID:  reqID,
			IP:         requestctx.GetClientIP(r.Context()),
		}); err != nil {
			slog.Warn("audit log failed", "action", "auth.login", "err", err)
		}
	}

	api.Success(w, map[string]any{"token": token, "user": actor}, reqID)
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	api.Success(w, user, requestctx.GetRequestID(r.Context()))
}
