package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/auth"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/review"
)

type created struct {
	userID string
	ntype  string
}

type fakeStore struct {
	created []created
	emails  map[string]string
	owners  map[string]string
	chiefs  map[string][]string
}

func (f *fakeStore) CreateNotification(_ context.Context, userID, ntype, _, _ string) error {
	f.created = append(f.created, created{userID: userID, ntype: ntype})
	return nil
}

func (f *fakeStore) UserEmail(_ context.Context, userID string) (string, error) {
	email, ok := f.emails[userID]
	if !ok {
		return "", errors.New("no rows")
	}
	return email, nil
}

func (f *fakeStore) ListNotifications(context.Context, string, int, int) ([]Notification, error) {
	return nil, nil
}

func (f *fakeStore) CountNotifications(context.Context, string) (int, error) {
	return len(f.created), nil
}

func (f *fakeStore) MarkRead(context.Context, string, string) error { return nil }

func (f *fakeStore) EmployeeUserID(_ context.Context, employeeID string) (string, error) {
	return f.owners[employeeID], nil
}

func (f *fakeStore) DivisionChiefUserIDs(_ context.Context, divisionID string) ([]string, error) {
	return f.chiefs[divisionID], nil
}

type sentMail struct {
	from, to, subject string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, from, to, subject, _ string) error {
	m.sent = append(m.sent, sentMail{from: from, to: to, subject: subject})
	return m.err
}

func newStore() *fakeStore {
	return &fakeStore{
		emails: map[string]string{"u-owner": "owner@example.gov", "u-chief": "chief@example.gov"},
		owners: map[string]string{"e-owner": "u-owner"},
		chiefs: map[string][]string{"d1": {"u-chief", "u-chief2"}},
	}
}

func TestCreateSendsMail(t *testing.T) {
	store := newStore()
	mailer := &fakeMailer{}
	svc := New(store, mailer, "hr@example.gov")

	require.NoError(t, svc.Create(context.Background(), "u-owner", TypeReviewFinalized, "IPCR finalized", "done"))
	assert.Equal(t, []sentMail{{from: "hr@example.gov", to: "owner@example.gov", subject: "IPCR finalized"}}, mailer.sent)
}

func TestCreateIgnoresMailFailures(t *testing.T) {
	store := newStore()
	mailer := &fakeMailer{err: errors.New("smtp down")}
	svc := New(store, mailer, "")

	require.NoError(t, svc.Create(context.Background(), "u-owner", TypeReviewReviewed, "t", "b"))
	require.NoError(t, svc.Create(context.Background(), "u-unknown", TypeReviewReviewed, "t", "b"))
	assert.Len(t, store.created, 2)
	assert.Equal(t, "no-reply@example.com", mailer.sent[0].from)
}

func TestReviewSinkNotifiesChiefsOnSubmit(t *testing.T) {
	store := newStore()
	sink := ReviewSink{Service: New(store, nil, ""), Store: store}

	err := sink.Publish(context.Background(), review.Event{
		Kind: review.EventTransition, EmployeeID: "e-owner", DivisionID: "d1",
		Actor: auth.Actor{UserID: "u-owner"}, From: review.StatusDraft, To: review.StatusSubmitted,
	})
	require.NoError(t, err)
	assert.Equal(t, []created{
		{userID: "u-chief", ntype: TypeReviewSubmitted},
		{userID: "u-chief2", ntype: TypeReviewSubmitted},
	}, store.created)
}

func TestReviewSinkNotifiesOwner(t *testing.T) {
	store := newStore()
	sink := ReviewSink{Service: New(store, nil, ""), Store: store}
	ctx := context.Background()

	require.NoError(t, sink.Publish(ctx, review.Event{
		Kind: review.EventTransition, EmployeeID: "e-owner", Actor: auth.Actor{UserID: "u-hr"},
		From: review.StatusReviewed, To: review.StatusReturned,
	}))
	// the owner reopening their own document is not news to them
	require.NoError(t, sink.Publish(ctx, review.Event{
		Kind: review.EventTransition, EmployeeID: "e-owner", Actor: auth.Actor{UserID: "u-owner"},
		From: review.StatusReturned, To: review.StatusDraft,
	}))
	require.NoError(t, sink.Publish(ctx, review.Event{Kind: review.EventDraftSaved, EmployeeID: "e-owner"}))

	assert.Equal(t, []created{{userID: "u-owner", ntype: TypeReviewReturned}}, store.created)
}
