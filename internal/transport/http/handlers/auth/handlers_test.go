package authhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/audit"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/auth"
)

type fakeLogin struct {
	err error
}

func (f fakeLogin) Login(_ context.Context, email, password string) (string, auth.Actor, error) {
	if f.err != nil {
		return "", auth.Actor{}, f.err
	}
	if email != "hr@example.gov" || password != "secret" {
		return "", auth.Actor{}, auth.ErrInvalidCredentials
	}
	return "signed-token", auth.Actor{UserID: "u1", EmployeeID: "e1", Role: auth.RoleHR}, nil
}

type recordedEntries []audit.Entry

func (r *recordedEntries) Record(_ context.Context, entry audit.Entry) error {
	*r = append(*r, entry)
	return nil
}

func serve(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := chi.NewRouter()
	h.RegisterRoutes(router)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestLoginIssuesTokenAndAudits(t *testing.T) {
	entries := &recordedEntries{}
	rec := serve(t, NewHandler(fakeLogin{}, entries), `{"email":"hr@example.gov","password":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Data struct {
			Token string     `json:"token"`
			User  auth.Actor `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "signed-token", body.Data.Token)
	assert.Equal(t, auth.RoleHR, body.Data.User.Role)
	require.Len(t, *entries, 1)
	assert.Equal(t, "auth.login", (*entries)[0].Action)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	rec := serve(t, NewHandler(fakeLogin{}, nil), `{"email":"hr@example.gov","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_credentials")
}

func TestLoginValidatesPayload(t *testing.T) {
	rec := serve(t, NewHandler(fakeLogin{}, nil), `{"email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_error")
}

func TestLoginInternalFailure(t *testing.T) {
	rec := serve(t, NewHandler(fakeLogin{err: errors.New("signing failed")}, nil), `{"email":"hr@example.gov","password":"secret"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
