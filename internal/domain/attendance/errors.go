package attendance

import "github.com/carlpacpaco9-design/HRIS-sub001/internal/shared/apperror"

var (
	ErrEmployeeNotFound = apperror.NotFound("employee_not_found", "employee not found")
	ErrLogNotFound      = apperror.NotFound("dtr_log_not_found", "no DTR entry for this date")

	ErrForbidden = apperror.Forbidden("action_not_permitted", "you are not permitted to perform this action")

	ErrInvalidPunches = apperror.Validation("invalid_punches", "punch times are invalid")
	ErrFutureDate     = apperror.Validation("future_date", "DTR entries cannot be recorded for future dates")
	ErrRemarksTooLong = apperror.Validation("text_too_long", "remarks must be at most 1000 characters")
)
