package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers that must react differently to
// "fix this field" and "not permitted".
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuthorization
	KindConflict
	KindNotFound
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

type AppError struct {
	Kind    Kind
	Code    string // machine readable, e.g. incomplete_ratings
	Message string // user-friendly message
	Err     error  // wrapped original error (optional)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another AppError of the same kind. A target without a code
// matches every error of its kind.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

var (
	ErrValidation    = &AppError{Kind: KindValidation, Message: "validation failed"}
	ErrAuthorization = &AppError{Kind: KindAuthorization, Message: "not permitted"}
	ErrConflict      = &AppError{Kind: KindConflict, Message: "conflict"}
	ErrNotFound      = &AppError{Kind: KindNotFound, Message: "not found"}
	ErrStorage       = &AppError{Kind: KindStorage, Message: "storage failure"}
)

func Validation(code, message string) *AppError {
	return &AppError{Kind: KindValidation, Code: code, Message: message}
}

func Forbidden(code, message string) *AppError {
	return &AppError{Kind: KindAuthorization, Code: code, Message: message}
}

func Conflict(code, message string) *AppError {
	return &AppError{Kind: KindConflict, Code: code, Message: message}
}

func NotFound(code, message string) *AppError {
	return &AppError{Kind: KindNotFound, Code: code, Message: message}
}

// Storage wraps a driver error. A nil err yields nil.
func Storage(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return &AppError{Kind: KindStorage, Code: "storage_error", Message: message, Err: err}
}

// Detail returns a copy of base carrying a more specific message.
func Detail(base *AppError, format string, args ...any) *AppError {
	out := *base
	out.Message = fmt.Sprintf(format, args...)
	return &out
}

func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// CodeAndMessage extracts what a transport layer shows to the caller.
// Unclassified errors are reported generically.
func CodeAndMessage(err error) (string, string) {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind != KindStorage && appErr.Kind != KindUnknown {
		code := appErr.Code
		if code == "" {
			code = appErr.Kind.String()
		}
		return code, appErr.Message
	}
	return "internal_error", "internal error"
}
