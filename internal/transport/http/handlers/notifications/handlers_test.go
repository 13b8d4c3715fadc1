package notificationshandler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/auth"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/notifications"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/transport/http/middleware"
)

type memStore struct {
	items map[string][]notifications.Notification
	read  []string
}

func (m *memStore) CreateNotification(_ context.Context, userID, ntype, title, body string) error {
	m.items[userID] = append(m.items[userID], notifications.Notification{Type: ntype, Title: title, Body: body})
	return nil
}

func (m *memStore) UserEmail(context.Context, string) (string, error) { return "", nil }

func (m *memStore) ListNotifications(_ context.Context, userID string, _, _ int) ([]notifications.Notification, error) {
	return m.items[userID], nil
}

func (m *memStore) CountNotifications(_ context.Context, userID string) (int, error) {
	return len(m.items[userID]), nil
}

func (m *memStore) MarkRead(_ context.Context, _, notificationID string) error {
	m.read = append(m.read, notificationID)
	return nil
}

func (m *memStore) EmployeeUserID(context.Context, string) (string, error) { return "", nil }

func (m *memStore) DivisionChiefUserIDs(context.Context, string) ([]string, error) { return nil, nil }

func newRouter(store *memStore) http.Handler {
	router := chi.NewRouter()
	NewHandler(notifications.New(store, nil, ""), auth.StaticPermissions{}).RegisterRoutes(router)
	return router
}

func asUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), auth.Actor{UserID: userID, Role: auth.RoleEmployee}))
}

func TestListReturnsOwnNotifications(t *testing.T) {
	store := &memStore{items: map[string][]notifications.Notification{}}
	require.NoError(t, store.CreateNotification(context.Background(), "u1", notifications.TypeReviewReturned, "Returned", "fix it"))
	require.NoError(t, store.CreateNotification(context.Background(), "u2", notifications.TypeReviewReturned, "Other", ""))

	rec := httptest.NewRecorder()
	newRouter(store).ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodGet, "/notifications/", nil), "u1"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Total-Count"))
	assert.Contains(t, rec.Body.String(), "Returned")
	assert.NotContains(t, rec.Body.String(), "Other")
}

func TestMarkReadRejectsMalformedID(t *testing.T) {
	store := &memStore{items: map[string][]notifications.Notification{}}
	router := newRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodPost, "/notifications/nope/read", nil), "u1"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	id := "7b0c8e3a-4a55-4a1c-9c3e-2f1f7f1d9a10"
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodPost, "/notifications/"+id+"/read", nil), "u1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{id}, store.read)
}

func TestAnonymousIsRejected(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&memStore{items: map[string][]notifications.Notification{}}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
