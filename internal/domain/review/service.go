package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/auth"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/rating"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/requestctx"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/shared/apperror"
)

const (
	maxOutputTextLength = 4000
	maxRemarksLength    = 4000
)

// Debouncer collapses repeated triggers for a key into one call.
type Debouncer interface {
	Trigger(key string, fn func())
}

type Service struct {
	store    StoreAPI
	events   EventSink
	autosave Debouncer
	Now      func() time.Time
}

// NewService wires the workflow. events and autosave may be nil; without a
// debouncer every output edit publishes its own draft_saved event.
func NewService(store StoreAPI, events EventSink, autosave Debouncer) *Service {
	return &Service{store: store, events: events, autosave: autosave, Now: time.Now}
}

func (s *Service) ListPeriods(ctx context.Context) ([]Period, error) {
	periods, err := s.store.ListPeriods(ctx)
	return periods, apperror.Storage(err, "failed to list rating periods")
}

func (s *Service) CreatePeriod(ctx context.Context, actor auth.Actor, in PeriodInput) (Period, error) {
	if !actor.HasRole(auth.RoleHR) {
		return Period{}, ErrForbidden
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return Period{}, apperror.Detail(ErrInvalidPeriod, "period name is required")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return Period{}, apperror.Detail(ErrInvalidPeriod, "start and end dates are required")
	}
	if in.EndDate.Before(in.StartDate) {
		return Period{}, apperror.Detail(ErrInvalidPeriod, "end date must not be before start date")
	}
	period, err := s.store.CreatePeriod(ctx, in, actor.UserID)
	if err != nil {
		return Period{}, apperror.Storage(err, "failed to create rating period")
	}
	return period, nil
}

func (s *Service) GetDocument(ctx context.Context, actor auth.Actor, documentID string) (DocumentView, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return DocumentView{}, apperror.Storage(err, "failed to load review document")
	}
	if !CanView(actor, doc) {
		return DocumentView{}, ErrForbidden
	}
	return BuildView(actor, doc), nil
}

// ListDocuments narrows the filter to what the actor may see: employees see
// their own documents, chiefs their division, HR and the head of office all.
func (s *Service) ListDocuments(ctx context.Context, actor auth.Actor, filter Filter) ([]Document, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperror.Validation("invalid_status", "unknown status filter")
	}
	switch {
	case actor.IsOfficeWide():
	case actor.Role == auth.RoleDivisionChief && actor.DivisionID != "" && filter.EmployeeID != actor.EmployeeID:
		filter.DivisionID = actor.DivisionID
	default:
		if actor.EmployeeID == "" {
			return nil, ErrNoEmployeeRecord
		}
		filter.EmployeeID = actor.EmployeeID
	}
	docs, err := s.store.ListDocuments(ctx, filter)
	if err != nil {
		return nil, apperror.Storage(err, "failed to list review documents")
	}
	return docs, nil
}

// AddOutput appends an output to the actor's own document for the period,
// creating the draft document on first use.
func (s *Service) AddOutput(ctx context.Context, actor auth.Actor, periodID string, in OutputInput) (Output, error) {
	if actor.EmployeeID == "" {
		return Output{}, ErrNoEmployeeRecord
	}
	if _, err := s.store.GetPeriod(ctx, periodID); err != nil {
		return Output{}, apperror.Storage(err, "failed to load rating period")
	}

	existing, err := s.store.FindDocument(ctx, actor.EmployeeID, periodID)
	switch {
	case err == nil:
		if !existing.Status.Editable() {
			return Output{}, ErrNotEditable
		}
	case errors.Is(err, ErrDocumentNotFound):
	default:
		return Output{}, apperror.Storage(err, "failed to load review document")
	}

	in, err = normalizeOutput(in)
	if err != nil {
		return Output{}, err
	}

	doc, err := s.store.EnsureDocument(ctx, actor.EmployeeID, periodID)
	if err != nil {
		return Output{}, apperror.Storage(err, "failed to create review document")
	}
	out, err := s.store.InsertOutput(ctx, doc.ID, in)
	if err != nil {
		return Output{}, apperror.Storage(err, "failed to add output")
	}
	s.draftSaved(ctx, actor, doc)
	return out, nil
}

func (s *Service) UpdateOutput(ctx context.Context, actor auth.Actor, documentID, outputID string, in OutputInput) (Output, error) {
	doc, err := s.editableDocument(ctx, actor, documentID, outputID)
	if err != nil {
		return Output{}, err
	}
	in, err = normalizeOutput(in)
	if err != nil {
		return Output{}, err
	}
	out, err := s.store.UpdateOutput(ctx, doc.ID, outputID, in)
	if err != nil {
		return Output{}, apperror.Storage(err, "failed to update output")
	}
	s.draftSaved(ctx, actor, doc)
	return out, nil
}

func (s *Service) DeleteOutput(ctx context.Context, actor auth.Actor, documentID, outputID string) error {
	doc, err := s.editableDocument(ctx, actor, documentID, outputID)
	if err != nil {
		return err
	}
	if err := s.store.SoftDeleteOutput(ctx, doc.ID, outputID); err != nil {
		return apperror.Storage(err, "failed to delete output")
	}
	s.draftSaved(ctx, actor, doc)
	return nil
}

func (s *Service) editableDocument(ctx context.Context, actor auth.Actor, documentID, outputID string) (Document, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return Document{}, apperror.Storage(err, "failed to load review document")
	}
	if !Allowed(actor, doc, ActionEditOutputs) {
		return Document{}, ErrForbidden
	}
	if !doc.Status.Editable() {
		return Document{}, ErrNotEditable
	}
	if _, ok := findOutput(doc.Outputs, outputID); !ok {
		return Document{}, ErrOutputNotFound
	}
	return doc, nil
}

func (s *Service) Submit(ctx context.Context, actor auth.Actor, documentID string, req TransitionRequest) (Document, error) {
	return s.transition(ctx, actor, documentID, ActionSubmit, req, func(doc Document, _ *Transition) error {
		if len(doc.Outputs) == 0 {
			return ErrNoOutputs
		}
		return nil
	})
}

func (s *Service) Cancel(ctx context.Context, actor auth.Actor, documentID string, req TransitionRequest) (Document, error) {
	return s.transition(ctx, actor, documentID, ActionCancel, req, nil)
}

func (s *Service) Review(ctx context.Context, actor auth.Actor, documentID string, req TransitionRequest) (Document, error) {
	return s.transition(ctx, actor, documentID, ActionReview, req, func(_ Document, t *Transition) error {
		comments := strings.TrimSpace(req.ReviewComments)
		if len(comments) > maxRemarksLength {
			return tooLong("review comments")
		}
		t.ReviewComments = &comments
		return nil
	})
}

// RateOutputs records partial or complete ratings while the document is
// under review. It does not change status.
func (s *Service) RateOutputs(ctx context.Context, actor auth.Actor, documentID string, req TransitionRequest) (Document, error) {
	return s.transition(ctx, actor, documentID, ActionRateOutputs, req, func(doc Document, t *Transition) error {
		if len(req.Ratings) == 0 {
			return apperror.Detail(ErrInvalidRating, "no ratings supplied")
		}
		merged, err := mergeRatings(doc.Outputs, req.Ratings)
		if err != nil {
			return err
		}
		t.Ratings = make(map[string]rating.Scores, len(req.Ratings))
		t.OutputAverages = make(map[string]*float64, len(req.Ratings))
		for id := range req.Ratings {
			t.Ratings[id] = merged[id]
			t.OutputAverages[id] = averagePtr(merged[id])
		}
		return nil
	})
}

// Finalize merges the payload ratings with stored ones, requires every
// output to be fully rated, and writes averages and status atomically.
func (s *Service) Finalize(ctx context.Context, actor auth.Actor, documentID string, req TransitionRequest) (Document, error) {
	return s.transition(ctx, actor, documentID, ActionFinalize, req, func(doc Document, t *Transition) error {
		merged, err := mergeRatings(doc.Outputs, req.Ratings)
		if err != nil {
			return err
		}

		t.Ratings = make(map[string]rating.Scores, len(doc.Outputs))
		t.OutputAverages = make(map[string]*float64, len(doc.Outputs))
		averages := make([]*float64, 0, len(doc.Outputs))
		unrated := 0
		for _, out := range doc.Outputs {
			scores := merged[out.ID]
			avg := averagePtr(scores)
			if avg == nil {
				unrated++
			}
			t.Ratings[out.ID] = scores
			t.OutputAverages[out.ID] = avg
			averages = append(averages, avg)
		}
		if unrated > 0 {
			return apperror.Detail(ErrIncompleteRatings, "%d of %d outputs are not fully rated", unrated, len(doc.Outputs))
		}

		final, ok := rating.FinalAverage(averages)
		if !ok {
			return ErrIncompleteRatings
		}
		band, err := rating.Adjectival(final)
		if err != nil {
			return apperror.Detail(ErrInvalidRating, "%v", err)
		}
		t.FinalAverage = &final
		t.Adjectival = string(band)

		if remarks := strings.TrimSpace(req.FinalRemarks); remarks != "" {
			if len(remarks) > maxRemarksLength {
				return tooLong("final remarks")
			}
			t.FinalRemarks = &remarks
		}
		return nil
	})
}

// Return sends a reviewed document back to its owner. Ratings entered during
// review are cleared so the revised outputs are rated afresh.
func (s *Service) Return(ctx context.Context, actor auth.Actor, documentID string, req TransitionRequest) (Document, error) {
	return s.transition(ctx, actor, documentID, ActionReturn, req, func(_ Document, t *Transition) error {
		remarks := strings.TrimSpace(req.FinalRemarks)
		if remarks == "" {
			return ErrFinalRemarksRequired
		}
		if len(remarks) > maxRemarksLength {
			return tooLong("final remarks")
		}
		t.FinalRemarks = &remarks
		t.ClearRatings = true
		return nil
	})
}

func (s *Service) Reopen(ctx context.Context, actor auth.Actor, documentID string, req TransitionRequest) (Document, error) {
	return s.transition(ctx, actor, documentID, ActionReopen, req, nil)
}

// transition runs the shared checks in a fixed order: existence, capability,
// status, expected version, then the action-specific content check.
func (s *Service) transition(ctx context.Context, actor auth.Actor, documentID string, action Action, req TransitionRequest, prepare func(Document, *Transition) error) (Document, error) {
	c := capabilities[action]

	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return Document{}, apperror.Storage(err, "failed to load review document")
	}
	if !Allowed(actor, doc, action) {
		return Document{}, ErrForbidden
	}
	if doc.Status != c.from && doc.Status != c.to {
		return Document{}, apperror.Detail(ErrInvalidTransition, "cannot %s a document that is %s", action, doc.Status)
	}
	if req.ExpectedVersion != nil && *req.ExpectedVersion != doc.Version {
		return Document{}, ErrVersionMismatch
	}
	if doc.Status != c.from {
		// The action already took effect. A retry is answered with the stored
		// document only when it carries nothing the first call did not write.
		if !retryMatchesStored(action, doc, req) {
			return Document{}, apperror.Detail(ErrInvalidTransition, "document is already %s", doc.Status)
		}
		return doc, nil
	}

	t := Transition{
		DocumentID:      doc.ID,
		From:            c.from,
		To:              c.to,
		ExpectedVersion: doc.Version,
		At:              s.Now().UTC(),
	}
	if prepare != nil {
		if err := prepare(doc, &t); err != nil {
			return Document{}, err
		}
	}

	updated, err := s.store.ApplyTransition(ctx, t)
	if err != nil {
		return Document{}, apperror.Storage(err, "failed to update review document")
	}

	if t.From != t.To {
		s.publish(ctx, Event{
			Kind:       EventTransition,
			Action:     action,
			DocumentID: updated.ID,
			EmployeeID: updated.EmployeeID,
			DivisionID: updated.DivisionID,
			PeriodID:   updated.PeriodID,
			PeriodName: updated.PeriodName,
			Actor:      actor,
			From:       t.From,
			To:         t.To,
			Version:    updated.Version,
			RequestID:  requestctx.GetRequestID(ctx),
			ClientIP:   requestctx.GetClientIP(ctx),
			OccurredAt: t.At,
		})
	}
	return updated, nil
}

func (s *Service) draftSaved(ctx context.Context, actor auth.Actor, doc Document) {
	evt := Event{
		Kind:       EventDraftSaved,
		Action:     ActionEditOutputs,
		DocumentID: doc.ID,
		EmployeeID: doc.EmployeeID,
		DivisionID: doc.DivisionID,
		PeriodID:   doc.PeriodID,
		PeriodName: doc.PeriodName,
		Actor:      actor,
		RequestID:  requestctx.GetRequestID(ctx),
		ClientIP:   requestctx.GetClientIP(ctx),
	}
	if s.autosave == nil {
		evt.OccurredAt = s.Now().UTC()
		s.publish(ctx, evt)
		return
	}
	s.autosave.Trigger(doc.ID, func() {
		evt.OccurredAt = s.Now().UTC()
		s.publish(context.Background(), evt)
	})
}

func (s *Service) publish(ctx context.Context, evt Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, evt); err != nil {
		slog.Warn("review event publish failed", "event", evt.Name(), "documentId", evt.DocumentID, "err", err)
	}
}

// BuildView groups outputs by category in first-seen order and computes the
// preview average from the ratings entered so far.
func BuildView(actor auth.Actor, doc Document) DocumentView {
	view := DocumentView{
		Document:         doc,
		StatusLabel:      doc.Status.Label(),
		StatusBadge:      doc.Status.Badge(),
		Groups:           GroupByCategory(doc.Outputs),
		AvailableActions: AvailableActions(actor, doc),
	}

	if doc.Status == StatusFinalized && doc.FinalAverageRating != nil {
		view.PreviewAverage = doc.FinalAverageRating
		view.PreviewAdjectival = doc.AdjectivalRating
		return view
	}

	averages := make([]*float64, 0, len(doc.Outputs))
	for _, out := range doc.Outputs {
		averages = append(averages, averagePtr(out.Ratings))
	}
	if avg, ok := rating.FinalAverage(averages); ok {
		view.PreviewAverage = &avg
		if band, err := rating.Adjectival(avg); err == nil {
			view.PreviewAdjectival = string(band)
		}
	}
	return view
}

func GroupByCategory(outputs []Output) []CategoryGroup {
	groups := make([]CategoryGroup, 0, 3)
	index := map[string]int{}
	for _, out := range outputs {
		i, ok := index[out.Category]
		if !ok {
			i = len(groups)
			index[out.Category] = i
			groups = append(groups, CategoryGroup{Category: out.Category})
		}
		groups[i].Outputs = append(groups[i].Outputs, out)
	}
	return groups
}

func normalizeOutput(in OutputInput) (OutputInput, error) {
	in.Category = strings.TrimSpace(in.Category)
	in.MajorFinalOutput = strings.TrimSpace(in.MajorFinalOutput)
	in.SuccessIndicatorTarget = strings.TrimSpace(in.SuccessIndicatorTarget)
	in.SuccessIndicatorMeasure = strings.TrimSpace(in.SuccessIndicatorMeasure)
	in.ActualAccomplishments = strings.TrimSpace(in.ActualAccomplishments)
	in.Remarks = strings.TrimSpace(in.Remarks)

	if in.Category == "" {
		return in, apperror.Detail(ErrInvalidOutput, "category is required")
	}
	if in.MajorFinalOutput == "" {
		return in, apperror.Detail(ErrInvalidOutput, "major final output is required")
	}
	for _, field := range []string{in.Category, in.MajorFinalOutput, in.SuccessIndicatorTarget, in.SuccessIndicatorMeasure, in.ActualAccomplishments, in.Remarks} {
		if len(field) > maxOutputTextLength {
			return in, apperror.Detail(ErrInvalidOutput, "output text fields must be at most %d characters", maxOutputTextLength)
		}
	}
	return in, nil
}

// mergeRatings overlays payload ratings on the stored ones, keyed by output id.
func mergeRatings(outputs []Output, updates map[string]rating.Scores) (map[string]rating.Scores, error) {
	merged := make(map[string]rating.Scores, len(outputs))
	for _, out := range outputs {
		merged[out.ID] = out.Ratings
	}
	for id, scores := range updates {
		stored, ok := merged[id]
		if !ok {
			return nil, ErrUnknownOutput
		}
		if err := scores.Validate(); err != nil {
			return nil, apperror.Detail(ErrInvalidRating, "%v", err)
		}
		merged[id] = stored.Merge(scores)
	}
	return merged, nil
}

// retryMatchesStored reports whether req, replayed against a document the
// action already moved, would write nothing new.
func retryMatchesStored(action Action, doc Document, req TransitionRequest) bool {
	switch action {
	case ActionReview:
		return sameText(req.ReviewComments, doc.ReviewComments)
	case ActionReturn:
		return sameText(req.FinalRemarks, doc.FinalRemarks)
	case ActionFinalize:
		if !sameText(req.FinalRemarks, doc.FinalRemarks) {
			return false
		}
		for id, scores := range req.Ratings {
			out, ok := findOutput(doc.Outputs, id)
			if !ok || !out.Ratings.Merge(scores).Equal(out.Ratings) {
				return false
			}
		}
	}
	return true
}

func sameText(requested, stored string) bool {
	requested = strings.TrimSpace(requested)
	return requested == "" || requested == stored
}

func tooLong(field string) error {
	return apperror.Validation("text_too_long", fmt.Sprintf("%s must be at most %d characters", field, maxRemarksLength))
}

func averagePtr(scores rating.Scores) *float64 {
	avg, ok := rating.OutputAverage(scores)
	if !ok {
		return nil
	}
	return &avg
}

func findOutput(outputs []Output, outputID string) (Output, bool) {
	for _, out := range outputs {
		if out.ID == outputID {
			return out, true
		}
	}
	return Output{}, false
}
