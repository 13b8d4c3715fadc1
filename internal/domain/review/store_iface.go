package review

import "context"

type StoreAPI interface {
	ListPeriods(ctx context.Context) ([]Period, error)
	GetPeriod(ctx context.Context, periodID string) (Period, error)
	CreatePeriod(ctx context.Context, in PeriodInput, createdBy string) (Period, error)

	// GetDocument and FindDocument return the document with its
	// non-deleted outputs, or ErrDocumentNotFound.
	GetDocument(ctx context.Context, documentID string) (Document, error)
	FindDocument(ctx context.Context, employeeID, periodID string) (Document, error)
	ListDocuments(ctx context.Context, filter Filter) ([]Document, error)
	// EnsureDocument returns the (employee, period) document, creating an
	// empty draft when none exists.
	EnsureDocument(ctx context.Context, employeeID, periodID string) (Document, error)

	// Output writes lock the document row and fail with ErrNotEditable
	// unless its status is still editable.
	InsertOutput(ctx context.Context, documentID string, in OutputInput) (Output, error)
	UpdateOutput(ctx context.Context, documentID, outputID string, in OutputInput) (Output, error)
	SoftDeleteOutput(ctx context.Context, documentID, outputID string) error

	// ApplyTransition writes ratings, document fields and status in one
	// transaction, guarded by status and version. A lost race yields
	// ErrVersionMismatch and nothing is written.
	ApplyTransition(ctx context.Context, t Transition) (Document, error)
}
