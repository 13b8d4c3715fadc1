package attendancehandler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/attendance"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/attendance/attendancetest"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/audit"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/auth"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/transport/http/middleware"
)

var (
	staff = auth.Actor{UserID: "u-staff", EmployeeID: "e-staff", DivisionID: "d1", Role: auth.RoleEmployee}
	peer  = auth.Actor{UserID: "u-peer", EmployeeID: "e-peer", DivisionID: "d1", Role: auth.RoleEmployee}
	hr    = auth.Actor{UserID: "u-hr", EmployeeID: "e-hr", DivisionID: "d9", Role: auth.RoleHR}
	head  = auth.Actor{UserID: "u-head", EmployeeID: "e-head", DivisionID: "d9", Role: auth.RoleHeadOfOffice}
)

type recordedEntries []audit.Entry

func (r *recordedEntries) Record(_ context.Context, entry audit.Entry) error {
	*r = append(*r, entry)
	return nil
}

type testServer struct {
	store   *attendancetest.MemStore
	entries *recordedEntries
	router  http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := attendancetest.NewMemStore()
	store.AddEmployee(attendance.Employee{ID: staff.EmployeeID, Name: "Cruz, Ana", DivisionID: "d1"})
	store.AddEmployee(attendance.Employee{ID: peer.EmployeeID, Name: "Lim, Dan", DivisionID: "d1"})
	svc := attendance.NewService(store, attendance.DefaultSchedule())
	svc.Now = func() time.Time { return time.Date(2026, 6, 30, 18, 0, 0, 0, time.UTC) }

	entries := &recordedEntries{}
	router := chi.NewRouter()
	NewHandler(svc, auth.StaticPermissions{}, entries).RegisterRoutes(router)
	return &testServer{store: store, entries: entries, router: router}
}

func (s *testServer) do(t *testing.T, actor auth.Actor, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw := []byte(nil)
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithUser(req.Context(), actor))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func TestUpsertLogComputesUndertimeAndAudits(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, staff, http.MethodPut, "/dtr/e-staff/2026-06-01", map[string]string{
		"amArrival":   "08:15",
		"amDeparture": "12:00",
		"pmArrival":   "13:00",
		"pmDeparture": "16:05",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var log attendance.Log
	decodeData(t, rec, &log)
	assert.Equal(t, 1, log.UndertimeHours)
	assert.Equal(t, 10, log.UndertimeMinutes)
	assert.Equal(t, staff.UserID, log.RecordedBy)

	require.Len(t, *s.entries, 1)
	assert.Equal(t, "dtr.upsert", (*s.entries)[0].Action)
	assert.Equal(t, log.ID, (*s.entries)[0].EntityID)
}

func TestUpsertLogRejectsBadInput(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, staff, http.MethodPut, "/dtr/e-staff/2026-06-01", map[string]string{"amArrival": "8am"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "amArrival")

	rec = s.do(t, staff, http.MethodPut, "/dtr/e-staff/not-a-date", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, staff, http.MethodPut, "/dtr/e-staff/2026-06-01", map[string]string{"amArrival": "12:30", "amDeparture": "12:00"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_punches")

	rec = s.do(t, staff, http.MethodPut, "/dtr/e-staff/2026-07-15", map[string]string{"amArrival": "08:00"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "future_date")
	assert.Empty(t, *s.entries)
}

func TestPeersCannotWriteEachOthersLogs(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, peer, http.MethodPut, "/dtr/e-staff/2026-06-01", map[string]string{"amArrival": "08:00"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, head, http.MethodPut, "/dtr/e-staff/2026-06-01", map[string]string{"amArrival": "08:00"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMonthlySummaryAndOfficeSummary(t *testing.T) {
	s := newTestServer(t)
	for _, day := range []string{"2026-06-01", "2026-06-02"} {
		rec := s.do(t, hr, http.MethodPut, "/dtr/e-staff/"+day, map[string]string{
			"amArrival":   "08:30",
			"amDeparture": "12:00",
			"pmArrival":   "13:00",
			"pmDeparture": "17:00",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := s.do(t, staff, http.MethodGet, "/dtr/e-staff/summary?month=2026-06", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report attendance.MonthlyReport
	decodeData(t, rec, &report)
	assert.Equal(t, 22, report.Summary.WorkingDays)
	assert.Equal(t, 2, report.Summary.DaysLogged)
	assert.Equal(t, 20, report.Summary.DaysAbsent)
	assert.Equal(t, 60, report.Summary.TotalUndertime)

	rec = s.do(t, staff, http.MethodGet, "/dtr/office/summary?month=2026-06", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, head, http.MethodGet, "/dtr/office/summary?month=2026-06", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []attendance.EmployeeSummary
	decodeData(t, rec, &rows)
	require.Len(t, rows, 2)
	assert.Equal(t, "Cruz, Ana", rows[0].Employee.Name)

	rec = s.do(t, staff, http.MethodGet, "/dtr/e-staff/summary?month=June", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetLogNotFound(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, staff, http.MethodGet, "/dtr/e-staff/2026-06-03", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "dtr_log_not_found")
}

func TestExports(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, staff, http.MethodPut, "/dtr/e-staff/2026-06-01", map[string]string{"amArrival": "08:00", "pmDeparture": "17:00"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, staff, http.MethodGet, "/dtr/e-staff/export.pdf?month=2026-06", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec = s.do(t, staff, http.MethodGet, "/dtr/e-staff/export.xlsx?month=2026-06", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypeXLSX, rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	rec = s.do(t, peer, http.MethodGet, "/dtr/e-staff/export.xlsx?month=2026-06", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
