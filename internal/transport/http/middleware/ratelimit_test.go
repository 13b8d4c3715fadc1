package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/auth"
)

func noContent() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRateLimitUsesUserKeyBeforeIPFallback(t *testing.T) {
	limited := RateLimit(1)(noContent())
	ctx := WithUser(context.Background(), auth.Actor{UserID: "user-1", Role: auth.RoleHR})

	first := httptest.NewRequest(http.MethodPost, "/api/v1/reviews/d1/finalize", nil).WithContext(ctx)
	first.RemoteAddr = "198.51.100.11:2222"
	firstRec := httptest.NewRecorder()
	limited.ServeHTTP(firstRec, first)
	if firstRec.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", firstRec.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/v1/reviews/d1/finalize", nil).WithContext(ctx)
	second.RemoteAddr = "198.51.100.12:3333"
	secondRec := httptest.NewRecorder()
	limited.ServeHTTP(secondRec, second)
	if secondRec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled by user key, got %d", secondRec.Code)
	}
	if secondRec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestRateLimitFallsBackToIP(t *testing.T) {
	limited := RateLimit(1)(noContent())

	first := httptest.NewRequest(http.MethodGet, "/api/v1/periods", nil)
	first.RemoteAddr = "203.0.113.10:4444"
	firstRec := httptest.NewRecorder()
	limited.ServeHTTP(firstRec, first)
	if firstRec.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", firstRec.Code)
	}

	second := httptest.NewRequest(http.MethodGet, "/api/v1/periods", nil)
	second.RemoteAddr = "203.0.113.10:5555"
	secondRec := httptest.NewRecorder()
	limited.ServeHTTP(secondRec, second)
	if secondRec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled by ip key, got %d", secondRec.Code)
	}

	other := httptest.NewRequest(http.MethodGet, "/api/v1/periods", nil)
	other.RemoteAddr = "203.0.113.99:5555"
	otherRec := httptest.NewRecorder()
	limited.ServeHTTP(otherRec, other)
	if otherRec.Code != http.StatusNoContent {
		t.Fatalf("expected other client to pass, got %d", otherRec.Code)
	}
}

func TestSensitiveLimitKeysLoginByEmail(t *testing.T) {
	limited := SensitiveMutationRateLimit(4)(noContent())

	login := func(addr, body string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := login("192.0.2.1:1", `{"email":"a@example.gov"}`); code != http.StatusNoContent {
		t.Fatalf("expected first login to pass, got %d", code)
	}
	if code := login("192.0.2.2:1", `{"email":"A@example.gov"}`); code != http.StatusTooManyRequests {
		t.Fatalf("expected same e-mail from another ip to be throttled, got %d", code)
	}
}

func TestSensitiveScope(t *testing.T) {
	cases := map[string]sensitiveScope{
		"/api/v1/auth/login":          sensitiveScopeAuth,
		"/api/v1/reviews/d1/submit":   sensitiveScopeActor,
		"/api/v1/reviews/d1/finalize": sensitiveScopeActor,
		"/api/v1/reviews/d1/outputs":  sensitiveScopeNone,
		"/api/v1/dtr/e1/2026-06-01":   sensitiveScopeNone,
	}
	for path, want := range cases {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		if got := sensitiveRateScope(req); got != want {
			t.Fatalf("%s: expected %q, got %q", path, want, got)
		}
	}
}
