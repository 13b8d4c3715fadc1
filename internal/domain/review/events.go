package review

import (
	"context"
	"errors"
	"time"

	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/auth"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/platform/events"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/platform/jobs"
)

type EventKind string

const (
	EventTransition EventKind = "transition"
	EventDraftSaved EventKind = "draft_saved"
)

type Event struct {
	Kind       EventKind  `json:"kind"`
	Action     Action     `json:"action,omitempty"`
	DocumentID string     `json:"documentId"`
	EmployeeID string     `json:"employeeId"`
	DivisionID string     `json:"divisionId"`
	PeriodID   string     `json:"periodId"`
	PeriodName string     `json:"periodName"`
	Actor      auth.Actor `json:"actor"`
	From       Status     `json:"from,omitempty"`
	To         Status     `json:"to,omitempty"`
	Version    int        `json:"version"`
	RequestID  string     `json:"requestId,omitempty"`
	ClientIP   string     `json:"clientIp,omitempty"`
	OccurredAt time.Time  `json:"occurredAt"`
}

// Name is the dotted event name used by audit and broker consumers.
func (e Event) Name() string {
	if e.Kind == EventDraftSaved {
		return "review.draft_saved"
	}
	return "review." + string(e.To)
}

// EventSink receives events after the write that caused them has committed.
// Failures never affect the transition.
type EventSink interface {
	Publish(ctx context.Context, evt Event) error
}

type SinkFunc func(ctx context.Context, evt Event) error

func (f SinkFunc) Publish(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}

// MultiSink delivers to every sink and joins their errors.
type MultiSink []EventSink

func (m MultiSink) Publish(ctx context.Context, evt Event) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Dispatcher interface {
	Enqueue(jobType string, run func(context.Context) (any, error)) bool
}

// AsyncSink hands delivery to a background worker queue.
type AsyncSink struct {
	Dispatcher Dispatcher
	Sink       EventSink
}

func (a AsyncSink) Publish(_ context.Context, evt Event) error {
	queued := a.Dispatcher.Enqueue(jobs.JobReviewEvent, func(ctx context.Context) (any, error) {
		details := map[string]any{"event": evt.Name(), "documentId": evt.DocumentID}
		return details, a.Sink.Publish(ctx, evt)
	})
	if !queued {
		return errors.New("review event dropped: queue full")
	}
	return nil
}

// BrokerSink forwards events to a message broker keyed by document id.
type BrokerSink struct {
	Publisher events.Publisher
}

func (b BrokerSink) Publish(ctx context.Context, evt Event) error {
	return b.Publisher.Publish(ctx, events.Message{
		Key:       evt.DocumentID,
		EventType: evt.Name(),
		Payload:   evt,
	})
}
