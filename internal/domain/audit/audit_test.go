package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/auth"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/review"
)

type memStore struct {
	events []Event
}

func (m *memStore) Insert(_ context.Context, evt Event) error {
	m.events = append(m.events, evt)
	return nil
}

func (m *memStore) Count(_ context.Context, _ Filter) (int, error) {
	return len(m.events), nil
}

func (m *memStore) List(_ context.Context, _ Filter, _ bool, _, _ int) ([]Event, error) {
	return m.events, nil
}

func TestRecordMarshalsSnapshots(t *testing.T) {
	store := &memStore{}
	svc := New(store)

	err := svc.Record(context.Background(), Entry{
		ActorID: "u1", Action: "dtr.upsert", EntityType: "dtr_log", EntityID: "log-1",
		After: map[string]int{"undertimeMinutes": 10},
	})
	require.NoError(t, err)
	require.Len(t, store.events, 1)
	assert.Nil(t, store.events[0].Before)
	assert.JSONEq(t, `{"undertimeMinutes":10}`, string(store.events[0].After))
}

func TestReviewSinkRecordsTransition(t *testing.T) {
	store := &memStore{}
	sink := ReviewSink{Service: New(store)}

	err := sink.Publish(context.Background(), review.Event{
		Kind:       review.EventTransition,
		Action:     review.ActionFinalize,
		DocumentID: "doc-1",
		Actor:      auth.Actor{UserID: "u-hr", Role: auth.RoleHR},
		From:       review.StatusReviewed,
		To:         review.StatusFinalized,
		Version:    6,
		RequestID:  "req-1",
		ClientIP:   "10.0.0.1",
	})
	require.NoError(t, err)

	evt := store.events[0]
	assert.Equal(t, "review.finalized", evt.Action)
	assert.Equal(t, EntityReviewDocument, evt.EntityType)
	assert.Equal(t, "u-hr", evt.ActorID)
	assert.Equal(t, "10.0.0.1", evt.IP)
	assert.JSONEq(t, `{"status":"reviewed"}`, string(evt.Before))
	assert.JSONEq(t, `{"status":"finalized","version":6,"action":"finalize"}`, string(evt.After))
}

func TestBuildBaseQuery(t *testing.T) {
	query, args := buildBaseQuery("SELECT COUNT(1)", Filter{Action: "review.submitted", EntityID: "doc-1"})
	assert.Equal(t, "SELECT COUNT(1) FROM audit_events WHERE 1=1 AND action = $1 AND entity_id = $2", query)
	assert.Equal(t, []any{"review.submitted", "doc-1"}, args)
}
