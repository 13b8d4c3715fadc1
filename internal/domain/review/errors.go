package review

import "github.com/carlpacpaco9-design/HRIS-sub001/internal/shared/apperror"

var (
	ErrDocumentNotFound = apperror.NotFound("document_not_found", "review document not found")
	ErrOutputNotFound   = apperror.NotFound("output_not_found", "output not found")
	ErrPeriodNotFound   = apperror.NotFound("period_not_found", "rating period not found")

	ErrForbidden = apperror.Forbidden("action_not_permitted", "you are not permitted to perform this action")

	ErrInvalidTransition = apperror.Conflict("invalid_transition", "the document status does not allow this action")
	ErrVersionMismatch   = apperror.Conflict("version_mismatch", "the document changed since it was loaded; refresh and retry")
	ErrNotEditable       = apperror.Conflict("not_editable", "outputs can only be changed while the document is a draft or returned")
	ErrDuplicatePeriod   = apperror.Conflict("duplicate_period", "a rating period with this name already exists")

	ErrNoOutputs            = apperror.Validation("no_outputs", "add at least one output before submitting")
	ErrIncompleteRatings    = apperror.Validation("incomplete_ratings", "every output needs quantity, efficiency and timeliness ratings")
	ErrFinalRemarksRequired = apperror.Validation("final_remarks_required", "final remarks are required when returning a document")
	ErrInvalidRating        = apperror.Validation("invalid_rating", "ratings must be whole numbers from 1 to 5")
	ErrUnknownOutput        = apperror.Validation("unknown_output", "a rating refers to an output that is not on this document")
	ErrInvalidOutput        = apperror.Validation("invalid_output", "output is incomplete")
	ErrInvalidPeriod        = apperror.Validation("invalid_period", "rating period is invalid")
	ErrNoEmployeeRecord     = apperror.Forbidden("no_employee_record", "your account is not linked to an employee record")
)
