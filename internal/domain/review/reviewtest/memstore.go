// Package reviewtest provides an in-memory review.StoreAPI for tests.
package reviewtest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/rating"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/review"
)

type employee struct {
	name       string
	divisionID string
}

type MemStore struct {
	mu        sync.Mutex
	seq       int
	employees map[string]employee
	periods   map[string]review.Period
	documents map[string]*review.Document
	outputs   map[string][]*storedOutput

	// FailApply makes the next ApplyTransition fail after validating its
	// guard, leaving every row untouched.
	FailApply error
}

type storedOutput struct {
	review.Output
	deleted bool
}

func NewMemStore() *MemStore {
	return &MemStore{
		employees: map[string]employee{},
		periods:   map[string]review.Period{},
		documents: map[string]*review.Document{},
		outputs:   map[string][]*storedOutput{},
	}
}

func (m *MemStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *MemStore) AddEmployee(employeeID, name, divisionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[employeeID] = employee{name: name, divisionID: divisionID}
}

func (m *MemStore) AddPeriod(name string, start, end time.Time) review.Period {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := review.Period{ID: m.nextID("period"), Name: name, StartDate: start, EndDate: end, CreatedAt: time.Now()}
	m.periods[p.ID] = p
	return p
}

// SetStatus forces a document into a state, bypassing the workflow.
func (m *MemStore) SetStatus(documentID string, status review.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc, ok := m.documents[documentID]; ok {
		doc.Status = status
		doc.Version++
	}
}

// AllOutputs returns every output including soft-deleted ones.
func (m *MemStore) AllOutputs(documentID string) []review.Output {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]review.Output, 0, len(m.outputs[documentID]))
	for _, o := range m.outputs[documentID] {
		out = append(out, o.Output)
	}
	return out
}

func (m *MemStore) ListPeriods(_ context.Context) ([]review.Period, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]review.Period, 0, len(m.periods))
	for _, p := range m.periods {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (m *MemStore) GetPeriod(_ context.Context, periodID string) (review.Period, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.periods[periodID]
	if !ok {
		return review.Period{}, review.ErrPeriodNotFound
	}
	return p, nil
}

func (m *MemStore) CreatePeriod(_ context.Context, in review.PeriodInput, _ string) (review.Period, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.periods {
		if p.Name == in.Name {
			return review.Period{}, review.ErrDuplicatePeriod
		}
	}
	p := review.Period{ID: m.nextID("period"), Name: in.Name, StartDate: in.StartDate, EndDate: in.EndDate, CreatedAt: time.Now()}
	m.periods[p.ID] = p
	return p, nil
}

func (m *MemStore) GetDocument(_ context.Context, documentID string) (review.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.documents[documentID]
	if !ok {
		return review.Document{}, review.ErrDocumentNotFound
	}
	return m.snapshot(doc), nil
}

func (m *MemStore) FindDocument(_ context.Context, employeeID, periodID string) (review.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc := m.find(employeeID, periodID)
	if doc == nil {
		return review.Document{}, review.ErrDocumentNotFound
	}
	return m.snapshot(doc), nil
}

func (m *MemStore) ListDocuments(_ context.Context, filter review.Filter) ([]review.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]review.Document, 0)
	for _, doc := range m.documents {
		if filter.EmployeeID != "" && doc.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.DivisionID != "" && doc.DivisionID != filter.DivisionID {
			continue
		}
		if filter.PeriodID != "" && doc.PeriodID != filter.PeriodID {
			continue
		}
		if filter.Status != "" && doc.Status != filter.Status {
			continue
		}
		snap := m.snapshot(doc)
		snap.Outputs = nil
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) EnsureDocument(_ context.Context, employeeID, periodID string) (review.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc := m.find(employeeID, periodID); doc != nil {
		return m.snapshot(doc), nil
	}
	period, ok := m.periods[periodID]
	if !ok {
		return review.Document{}, review.ErrPeriodNotFound
	}
	emp := m.employees[employeeID]
	now := time.Now()
	doc := &review.Document{
		ID:           m.nextID("doc"),
		EmployeeID:   employeeID,
		EmployeeName: emp.name,
		DivisionID:   emp.divisionID,
		PeriodID:     periodID,
		PeriodName:   period.Name,
		Status:       review.StatusDraft,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.documents[doc.ID] = doc
	return m.snapshot(doc), nil
}

func (m *MemStore) InsertOutput(_ context.Context, documentID string, in review.OutputInput) (review.Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, err := m.lockEditable(documentID)
	if err != nil {
		return review.Output{}, err
	}
	now := time.Now()
	out := &storedOutput{Output: review.Output{
		ID:         m.nextID("out"),
		DocumentID: documentID,
		SortOrder:  len(m.outputs[documentID]) + 1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}}
	applyInput(&out.Output, in)
	m.outputs[documentID] = append(m.outputs[documentID], out)
	doc.Version++
	return out.Output, nil
}

func (m *MemStore) UpdateOutput(_ context.Context, documentID, outputID string, in review.OutputInput) (review.Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, err := m.lockEditable(documentID)
	if err != nil {
		return review.Output{}, err
	}
	out := m.output(documentID, outputID)
	if out == nil {
		return review.Output{}, review.ErrOutputNotFound
	}
	applyInput(&out.Output, in)
	out.UpdatedAt = time.Now()
	doc.Version++
	return out.Output, nil
}

func (m *MemStore) SoftDeleteOutput(_ context.Context, documentID, outputID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, err := m.lockEditable(documentID)
	if err != nil {
		return err
	}
	out := m.output(documentID, outputID)
	if out == nil {
		return review.ErrOutputNotFound
	}
	out.deleted = true
	doc.Version++
	return nil
}

func (m *MemStore) ApplyTransition(_ context.Context, t review.Transition) (review.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.documents[t.DocumentID]
	if !ok {
		return review.Document{}, review.ErrDocumentNotFound
	}
	if doc.Status != t.From || doc.Version != t.ExpectedVersion {
		return review.Document{}, review.ErrVersionMismatch
	}
	for outputID := range t.Ratings {
		if m.output(t.DocumentID, outputID) == nil {
			return review.Document{}, review.ErrOutputNotFound
		}
	}
	if m.FailApply != nil {
		err := m.FailApply
		m.FailApply = nil
		return review.Document{}, err
	}

	if t.ClearRatings {
		for _, out := range m.outputs[t.DocumentID] {
			if !out.deleted {
				out.Ratings = rating.Scores{}
				out.RatingAverage = nil
				out.UpdatedAt = t.At
			}
		}
	}
	for outputID, scores := range t.Ratings {
		out := m.output(t.DocumentID, outputID)
		out.Ratings = scores
		out.RatingAverage = t.OutputAverages[outputID]
		out.UpdatedAt = t.At
	}
	doc.Status = t.To
	doc.Version++
	doc.UpdatedAt = t.At
	if t.ReviewComments != nil {
		doc.ReviewComments = *t.ReviewComments
	}
	if t.FinalRemarks != nil {
		doc.FinalRemarks = *t.FinalRemarks
	}
	if t.FinalAverage != nil {
		avg := *t.FinalAverage
		doc.FinalAverageRating = &avg
		doc.AdjectivalRating = t.Adjectival
	}
	if t.From != t.To {
		at := t.At
		switch t.To {
		case review.StatusSubmitted:
			doc.SubmittedAt = &at
		case review.StatusReviewed:
			doc.ReviewedAt = &at
		case review.StatusFinalized:
			doc.FinalizedAt = &at
		}
	}
	return m.snapshot(doc), nil
}

func (m *MemStore) find(employeeID, periodID string) *review.Document {
	for _, doc := range m.documents {
		if doc.EmployeeID == employeeID && doc.PeriodID == periodID {
			return doc
		}
	}
	return nil
}

func (m *MemStore) lockEditable(documentID string) (*review.Document, error) {
	doc, ok := m.documents[documentID]
	if !ok {
		return nil, review.ErrDocumentNotFound
	}
	if !doc.Status.Editable() {
		return nil, review.ErrNotEditable
	}
	return doc, nil
}

func (m *MemStore) output(documentID, outputID string) *storedOutput {
	for _, out := range m.outputs[documentID] {
		if out.ID == outputID && !out.deleted {
			return out
		}
	}
	return nil
}

func (m *MemStore) snapshot(doc *review.Document) review.Document {
	snap := *doc
	snap.Outputs = make([]review.Output, 0, len(m.outputs[doc.ID]))
	for _, out := range m.outputs[doc.ID] {
		if !out.deleted {
			snap.Outputs = append(snap.Outputs, out.Output)
		}
	}
	return snap
}

func applyInput(out *review.Output, in review.OutputInput) {
	out.Category = in.Category
	out.MajorFinalOutput = in.MajorFinalOutput
	out.SuccessIndicatorTarget = in.SuccessIndicatorTarget
	out.SuccessIndicatorMeasure = in.SuccessIndicatorMeasure
	out.ActualAccomplishments = in.ActualAccomplishments
	out.Remarks = in.Remarks
}
