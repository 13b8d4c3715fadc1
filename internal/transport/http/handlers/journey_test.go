package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/carlpacpaco9-design/HRIS-sub001/internal/app/server"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/platform/config"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Details struct {
			Fields []struct {
				Field string `json:"field"`
			} `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		TokenTTL:           time.Hour,
		Environment:        "test",
		MigrationsDir:      "../../../../../migrations",
		SeedAdminEmail:     "admin@test.local",
		SeedAdminPassword:  "ChangeMe123!",
		EmailFrom:          "no-reply@test.local",
		RunMigrations:      true,
		RunSeed:            true,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
		MetricsEnabled:     true,
		OfficeAMStart:      "08:00",
		OfficeAMEnd:        "12:00",
		OfficePMStart:      "13:00",
		OfficePMEnd:        "17:00",
	}
}

func startApp(t *testing.T) (*httptest.Server, config.Config) {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	t.Cleanup(app.Close)

	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)
	return ts, cfg
}

func TestIPCRDraftJourney(t *testing.T) {
	ts, cfg := startApp(t)
	client := ts.Client()
	token := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	periodName := fmt.Sprintf("Journey %d", time.Now().UnixNano())
	var period struct {
		ID string `json:"id"`
	}
	decode(t, doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/periods/", token, map[string]any{
		"name":      periodName,
		"startDate": "2026-01-01",
		"endDate":   "2026-06-30",
	}, http.StatusCreated), &period)

	var out struct {
		DocumentID string `json:"documentId"`
	}
	decode(t, doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/reviews/periods/"+period.ID+"/outputs", token, map[string]any{
		"category":               "Core Function",
		"majorFinalOutput":       "Processed personnel actions",
		"successIndicatorTarget": "100% within 5 working days",
	}, http.StatusCreated), &out)
	if out.DocumentID == "" {
		t.Fatal("expected output to belong to a document")
	}

	var doc struct {
		Status  string `json:"status"`
		Version int    `json:"version"`
	}
	decode(t, doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/reviews/"+out.DocumentID+"/submit", token, nil, http.StatusOK), &doc)
	if doc.Status != "submitted" {
		t.Fatalf("expected submitted, got %s", doc.Status)
	}

	// The seeded HR account owns this document and may not review it.
	resp := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/reviews/"+out.DocumentID+"/review", token, nil, http.StatusForbidden)
	if resp.Error == nil || resp.Error.Code != "action_not_permitted" {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}

	doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/reviews/"+out.DocumentID+"/cancel", token, map[string]any{
		"expectedVersion": doc.Version - 1,
	}, http.StatusConflict)
	decode(t, doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/reviews/"+out.DocumentID+"/cancel", token, map[string]any{
		"expectedVersion": doc.Version,
	}, http.StatusOK), &doc)
	if doc.Status != "draft" {
		t.Fatalf("expected draft after cancel, got %s", doc.Status)
	}

	doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/reviews/"+out.DocumentID+"/export.pdf", token, nil, http.StatusBadRequest)
	doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/reviews/not-a-uuid", token, nil, http.StatusNotFound)
}

func TestDTRJourney(t *testing.T) {
	ts, cfg := startApp(t)
	client := ts.Client()
	token := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	var me struct {
		EmployeeID string `json:"employeeId"`
	}
	decode(t, doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/auth/me", token, nil, http.StatusOK), &me)

	var log struct {
		ID               string `json:"id"`
		UndertimeHours   int    `json:"undertimeHours"`
		UndertimeMinutes int    `json:"undertimeMinutes"`
	}
	decode(t, doJSON(t, client, http.MethodPut, ts.URL+"/api/v1/dtr/"+me.EmployeeID+"/2026-06-01", token, map[string]any{
		"amArrival":   "08:15",
		"amDeparture": "12:00",
		"pmArrival":   "13:00",
		"pmDeparture": "16:05",
	}, http.StatusOK), &log)
	if log.UndertimeHours != 1 || log.UndertimeMinutes != 10 {
		t.Fatalf("expected 1h10m undertime, got %dh%dm", log.UndertimeHours, log.UndertimeMinutes)
	}

	resp := doJSON(t, client, http.MethodPut, ts.URL+"/api/v1/dtr/"+me.EmployeeID+"/2026-06-02", token, map[string]any{
		"amArrival": "8 o'clock",
	}, http.StatusBadRequest)
	assertValidationErrorField(t, resp, "amArrival")

	var report struct {
		Summary struct {
			WorkingDays int `json:"workingDays"`
		} `json:"summary"`
	}
	decode(t, doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/dtr/"+me.EmployeeID+"/summary?month=2026-06", token, nil, http.StatusOK), &report)
	if report.Summary.WorkingDays != 22 {
		t.Fatalf("expected 22 working days, got %d", report.Summary.WorkingDays)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/dtr/"+me.EmployeeID+"/export.xlsx?month=2026-06", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	xlsx, err := client.Do(req)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	defer xlsx.Body.Close()
	if xlsx.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 export, got %d", xlsx.StatusCode)
	}

	var events []struct {
		Action string `json:"action"`
	}
	decode(t, doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/audit/events?entityId="+log.ID, token, nil, http.StatusOK), &events)
	if len(events) == 0 || events[0].Action != "dtr.upsert" {
		t.Fatalf("expected dtr.upsert audit event, got %+v", events)
	}
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	var payload struct {
		Token string `json:"token"`
	}
	decode(t, doJSON(t, client, http.MethodPost, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	}, http.StatusOK), &payload)
	if payload.Token == "" {
		t.Fatal("expected token")
	}
	return payload.Token
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, body any, want int) envelope {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != want {
		t.Fatalf("%s %s: expected %d, got %d: %s", method, url, want, resp.StatusCode, raw)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func decode(t *testing.T, env envelope, dst any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func assertValidationErrorField(t *testing.T, env envelope, field string) {
	t.Helper()
	if env.Error == nil || env.Error.Code != "validation_error" {
		t.Fatalf("expected validation_error, got %+v", env.Error)
	}
	for _, f := range env.Error.Details.Fields {
		if f.Field == field {
			return
		}
	}
	t.Fatalf("expected validation issue for %s, got %+v", field, env.Error.Details.Fields)
}
