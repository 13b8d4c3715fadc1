package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/rating"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/platform/querier"
)

const (
	pgUniqueViolation = "23505"
	pgInvalidText     = "22P02"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const documentSelect = `
    SELECT d.id, d.employee_id, e.first_name || ' ' || e.last_name, COALESCE(e.division_id::text, ''),
           d.period_id, p.name, d.status, d.review_comments, d.final_remarks,
           d.final_average_rating, d.adjectival_rating, d.version,
           d.submitted_at, d.reviewed_at, d.finalized_at, d.created_at, d.updated_at
    FROM review_documents d
    JOIN employees e ON e.id = d.employee_id
    JOIN rating_periods p ON p.id = d.period_id
  `

const outputColumns = `id, document_id, category, major_final_output, success_indicator_target,
           success_indicator_measure, actual_accomplishments, remarks,
           rating_quantity, rating_efficiency, rating_timeliness, rating_average,
           sort_order, created_at, updated_at`

func (s *Store) ListPeriods(ctx context.Context) ([]Period, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, start_date, end_date, created_at
    FROM rating_periods
    ORDER BY start_date DESC
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	periods := make([]Period, 0)
	for rows.Next() {
		var p Period
		if err := rows.Scan(&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.CreatedAt); err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

func (s *Store) GetPeriod(ctx context.Context, periodID string) (Period, error) {
	var p Period
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, start_date, end_date, created_at
    FROM rating_periods
    WHERE id = $1
  `, periodID).Scan(&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.CreatedAt)
	if isNotFound(err) {
		return Period{}, ErrPeriodNotFound
	}
	return p, err
}

func (s *Store) CreatePeriod(ctx context.Context, in PeriodInput, createdBy string) (Period, error) {
	var p Period
	err := s.DB.QueryRow(ctx, `
    INSERT INTO rating_periods (name, start_date, end_date, created_by)
    VALUES ($1,$2,$3,$4)
    RETURNING id, name, start_date, end_date, created_at
  `, in.Name, in.StartDate, in.EndDate, nullIfEmpty(createdBy)).Scan(&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.CreatedAt)
	if pgCode(err) == pgUniqueViolation {
		return Period{}, ErrDuplicatePeriod
	}
	return p, err
}

func (s *Store) GetDocument(ctx context.Context, documentID string) (Document, error) {
	return loadDocument(ctx, s.DB, documentSelect+" WHERE d.id = $1", documentID)
}

func (s *Store) FindDocument(ctx context.Context, employeeID, periodID string) (Document, error) {
	return loadDocument(ctx, s.DB, documentSelect+" WHERE d.employee_id = $1 AND d.period_id = $2", employeeID, periodID)
}

func (s *Store) ListDocuments(ctx context.Context, filter Filter) ([]Document, error) {
	query := documentSelect + " WHERE 1=1"
	args := []any{}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		query += fmt.Sprintf(" AND d.employee_id = $%d", len(args))
	}
	if filter.DivisionID != "" {
		args = append(args, filter.DivisionID)
		query += fmt.Sprintf(" AND e.division_id = $%d", len(args))
	}
	if filter.PeriodID != "" {
		args = append(args, filter.PeriodID)
		query += fmt.Sprintf(" AND d.period_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND d.status = $%d", len(args))
	}
	query += " ORDER BY p.start_date DESC, e.last_name, e.first_name"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		if pgCode(err) == pgInvalidText {
			return []Document{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *Store) EnsureDocument(ctx context.Context, employeeID, periodID string) (Document, error) {
	if _, err := s.DB.Exec(ctx, `
    INSERT INTO review_documents (employee_id, period_id, status)
    VALUES ($1,$2,$3)
    ON CONFLICT (employee_id, period_id) DO NOTHING
  `, employeeID, periodID, string(StatusDraft)); err != nil {
		return Document{}, err
	}
	return s.FindDocument(ctx, employeeID, periodID)
}

func (s *Store) InsertOutput(ctx context.Context, documentID string, in OutputInput) (Output, error) {
	var out Output
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if err := lockEditable(ctx, tx, documentID); err != nil {
			return err
		}
		row := tx.QueryRow(ctx, `
      INSERT INTO review_outputs (document_id, category, major_final_output, success_indicator_target,
                                  success_indicator_measure, actual_accomplishments, remarks, sort_order)
      VALUES ($1,$2,$3,$4,$5,$6,$7,
              (SELECT COALESCE(MAX(sort_order), 0) + 1 FROM review_outputs WHERE document_id = $1))
      RETURNING `+outputColumns,
			documentID, in.Category, in.MajorFinalOutput, in.SuccessIndicatorTarget,
			in.SuccessIndicatorMeasure, in.ActualAccomplishments, in.Remarks)
		var err error
		if out, err = scanOutput(row); err != nil {
			return err
		}
		return bumpVersion(ctx, tx, documentID)
	})
	return out, err
}

func (s *Store) UpdateOutput(ctx context.Context, documentID, outputID string, in OutputInput) (Output, error) {
	var out Output
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if err := lockEditable(ctx, tx, documentID); err != nil {
			return err
		}
		row := tx.QueryRow(ctx, `
      UPDATE review_outputs
      SET category = $1, major_final_output = $2, success_indicator_target = $3,
          success_indicator_measure = $4, actual_accomplishments = $5, remarks = $6, updated_at = now()
      WHERE id = $7 AND document_id = $8 AND deleted_at IS NULL
      RETURNING `+outputColumns,
			in.Category, in.MajorFinalOutput, in.SuccessIndicatorTarget, in.SuccessIndicatorMeasure,
			in.ActualAccomplishments, in.Remarks, outputID, documentID)
		var err error
		out, err = scanOutput(row)
		if isNotFound(err) {
			return ErrOutputNotFound
		}
		if err != nil {
			return err
		}
		return bumpVersion(ctx, tx, documentID)
	})
	return out, err
}

func (s *Store) SoftDeleteOutput(ctx context.Context, documentID, outputID string) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if err := lockEditable(ctx, tx, documentID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `
      UPDATE review_outputs SET deleted_at = now(), updated_at = now()
      WHERE id = $1 AND document_id = $2 AND deleted_at IS NULL
    `, outputID, documentID)
		if isNotFound(err) {
			return ErrOutputNotFound
		}
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrOutputNotFound
		}
		return bumpVersion(ctx, tx, documentID)
	})
}

func (s *Store) ApplyTransition(ctx context.Context, t Transition) (Document, error) {
	var doc Document
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		query, args := transitionUpdate(t)
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrVersionMismatch
		}

		if t.ClearRatings {
			if _, err := tx.Exec(ctx, `
        UPDATE review_outputs
        SET rating_quantity = NULL, rating_efficiency = NULL, rating_timeliness = NULL, rating_average = NULL, updated_at = $1
        WHERE document_id = $2 AND deleted_at IS NULL
      `, t.At, t.DocumentID); err != nil {
				return err
			}
		}

		for outputID, scores := range t.Ratings {
			tag, err := tx.Exec(ctx, `
        UPDATE review_outputs
        SET rating_quantity = $1, rating_efficiency = $2, rating_timeliness = $3, rating_average = $4, updated_at = $5
        WHERE id = $6 AND document_id = $7 AND deleted_at IS NULL
      `, scores.Quantity, scores.Efficiency, scores.Timeliness, t.OutputAverages[outputID], t.At, outputID, t.DocumentID)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return ErrOutputNotFound
			}
		}

		doc, err = loadDocument(ctx, tx, documentSelect+" WHERE d.id = $1", t.DocumentID)
		return err
	})
	return doc, err
}

// transitionUpdate builds the guarded status update for t.
func transitionUpdate(t Transition) (string, []any) {
	args := []any{string(t.To), t.At}
	sets := []string{"status = $1", "updated_at = $2", "version = version + 1"}
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if t.ReviewComments != nil {
		set("review_comments", *t.ReviewComments)
	}
	if t.FinalRemarks != nil {
		set("final_remarks", *t.FinalRemarks)
	}
	if t.FinalAverage != nil {
		set("final_average_rating", *t.FinalAverage)
		set("adjectival_rating", t.Adjectival)
	}
	if t.From != t.To {
		switch t.To {
		case StatusSubmitted:
			set("submitted_at", t.At)
		case StatusReviewed:
			set("reviewed_at", t.At)
		case StatusFinalized:
			set("finalized_at", t.At)
		}
	}

	args = append(args, t.DocumentID, string(t.From), t.ExpectedVersion)
	n := len(args)
	query := fmt.Sprintf("UPDATE review_documents SET %s WHERE id = $%d AND status = $%d AND version = $%d",
		strings.Join(sets, ", "), n-2, n-1, n)
	return query, args
}

func (s *Store) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			slog.Warn("review tx rollback failed", "err", rbErr)
		}
		return err
	}
	return tx.Commit(ctx)
}

// lockEditable takes the document row lock and re-checks that the owner may
// still edit outputs.
func lockEditable(ctx context.Context, tx pgx.Tx, documentID string) error {
	var status string
	err := tx.QueryRow(ctx, "SELECT status FROM review_documents WHERE id = $1 FOR UPDATE", documentID).Scan(&status)
	if isNotFound(err) {
		return ErrDocumentNotFound
	}
	if err != nil {
		return err
	}
	if !Status(status).Editable() {
		return ErrNotEditable
	}
	return nil
}

func bumpVersion(ctx context.Context, tx pgx.Tx, documentID string) error {
	_, err := tx.Exec(ctx, "UPDATE review_documents SET version = version + 1, updated_at = now() WHERE id = $1", documentID)
	return err
}

type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func loadDocument(ctx context.Context, q rowQuerier, query string, args ...any) (Document, error) {
	doc, err := scanDocument(q.QueryRow(ctx, query, args...))
	if isNotFound(err) {
		return Document{}, ErrDocumentNotFound
	}
	if err != nil {
		return Document{}, err
	}
	outputs, err := listOutputs(ctx, q, doc.ID)
	if err != nil {
		return Document{}, err
	}
	doc.Outputs = outputs
	return doc, nil
}

func listOutputs(ctx context.Context, q rowQuerier, documentID string) ([]Output, error) {
	rows, err := q.Query(ctx, `
    SELECT `+outputColumns+`
    FROM review_outputs
    WHERE document_id = $1 AND deleted_at IS NULL
    ORDER BY sort_order, created_at
  `, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	outputs := make([]Output, 0)
	for rows.Next() {
		out, err := scanOutput(rows)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}
	return outputs, rows.Err()
}

func scanDocument(row pgx.Row) (Document, error) {
	var doc Document
	var status string
	err := row.Scan(&doc.ID, &doc.EmployeeID, &doc.EmployeeName, &doc.DivisionID,
		&doc.PeriodID, &doc.PeriodName, &status, &doc.ReviewComments, &doc.FinalRemarks,
		&doc.FinalAverageRating, &doc.AdjectivalRating, &doc.Version,
		&doc.SubmittedAt, &doc.ReviewedAt, &doc.FinalizedAt, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return Document{}, err
	}
	doc.Status, err = ParseStatus(status)
	return doc, err
}

func scanOutput(row pgx.Row) (Output, error) {
	var out Output
	var scores rating.Scores
	err := row.Scan(&out.ID, &out.DocumentID, &out.Category, &out.MajorFinalOutput, &out.SuccessIndicatorTarget,
		&out.SuccessIndicatorMeasure, &out.ActualAccomplishments, &out.Remarks,
		&scores.Quantity, &scores.Efficiency, &scores.Timeliness, &out.RatingAverage,
		&out.SortOrder, &out.CreatedAt, &out.UpdatedAt)
	out.Ratings = scores
	return out, err
}

// isNotFound also treats malformed ids as missing rows.
func isNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || pgCode(err) == pgInvalidText
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
