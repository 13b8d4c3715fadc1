package audit

import (
	"context"

	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/review"
)

const EntityReviewDocument = "review_document"

// ReviewSink records every review event in the audit trail.
type ReviewSink struct {
	Service *Service
}

func (r ReviewSink) Publish(ctx context.Context, evt review.Event) error {
	entry := Entry{
		ActorID:    evt.Actor.UserID,
		Action:     evt.Name(),
		EntityType: EntityReviewDocument,
		EntityID:   evt.DocumentID,
		RequestID:  evt.RequestID,
		IP:         evt.ClientIP,
		After:      map[string]any{"version": evt.Version, "periodId": evt.PeriodID},
	}
	if evt.Kind == review.EventTransition {
		entry.Before = map[string]any{"status": evt.From}
		entry.After = map[string]any{"status": evt.To, "version": evt.Version, "action": evt.Action}
	}
	return r.Service.Record(ctx, entry)
}
