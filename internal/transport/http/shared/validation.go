package shared

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/carlpacpaco9-design/HRIS-sub001/internal/transport/http/api"
)

const dateLayout = "2006-01-02"

type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Validator collects field issues for checks the struct tags cannot
// express: path dates, date ranges and query filters.
type Validator struct {
	issues []ValidationIssue
}

func NewValidator() *Validator {
	return &Validator{issues: make([]ValidationIssue, 0, 2)}
}

func (v *Validator) Add(field, reason string) {
	reason = strings.TrimSpace(reason)
	if v == nil || reason == "" {
		return
	}
	v.issues = append(v.issues, ValidationIssue{Field: strings.TrimSpace(field), Reason: reason})
}

// OneOf accepts an empty value, which means the filter is not applied.
func (v *Validator) OneOf(field, value string, allowed []string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return true
	}
	for _, candidate := range allowed {
		if value == candidate {
			return true
		}
	}
	v.Add(field, FieldLabel(field)+" must be one of: "+strings.Join(allowed, ", "))
	return false
}

// Date parses a calendar date. RFC3339 timestamps are truncated to their
// date in UTC.
func (v *Validator) Date(field, raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		v.Add(field, FieldLabel(field)+" is required")
		return time.Time{}, false
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		v.Add(field, FieldLabel(field)+" must be a valid date in YYYY-MM-DD format")
		return time.Time{}, false
	}
	y, m, d := parsed.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
}

// DateRange reports an end date before its start on both fields.
func (v *Validator) DateRange(startField string, start time.Time, endField string, end time.Time) {
	if start.IsZero() || end.IsZero() || !end.Before(start) {
		return
	}
	v.Add(startField, FieldLabel(startField)+" must be on or before "+FieldLabel(endField))
	v.Add(endField, FieldLabel(endField)+" must be on or after "+FieldLabel(startField))
}

// Issues returns a copy ordered by field so responses are stable.
func (v *Validator) Issues() []ValidationIssue {
	if v == nil || len(v.issues) == 0 {
		return nil
	}
	out := append([]ValidationIssue(nil), v.issues...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Field == out[j].Field {
			return out[i].Reason < out[j].Reason
		}
		return out[i].Field < out[j].Field
	})
	return out
}

// Reject writes a validation_error response when issues were collected.
func (v *Validator) Reject(w http.ResponseWriter, requestID string) bool {
	issues := v.Issues()
	if len(issues) == 0 {
		return false
	}
	FailValidation(w, requestID, issues)
	return true
}

func FailValidation(w http.ResponseWriter, requestID string, issues []ValidationIssue) {
	api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "payload validation failed",
		map[string]any{"fields": issues}, requestID)
}
