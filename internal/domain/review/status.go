package review

import "fmt"

// Status is the lifecycle state of an IPCR document.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusReviewed  Status = "reviewed"
	StatusFinalized Status = "finalized"
	StatusReturned  Status = "returned"
)

var AllStatuses = []Status{StatusDraft, StatusSubmitted, StatusReviewed, StatusFinalized, StatusReturned}

func ParseStatus(value string) (Status, error) {
	status := Status(value)
	if !status.Valid() {
		return "", fmt.Errorf("unknown review status %q", value)
	}
	return status, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusReviewed, StatusFinalized, StatusReturned:
		return true
	}
	return false
}

// Editable reports whether the owner may change outputs in this state.
func (s Status) Editable() bool {
	return s == StatusDraft || s == StatusReturned
}

func (s Status) Terminal() bool {
	return s == StatusFinalized
}

func (s Status) Label() string {
	switch s {
	case StatusDraft:
		return "Draft"
	case StatusSubmitted:
		return "Submitted"
	case StatusReviewed:
		return "Reviewed"
	case StatusFinalized:
		return "Finalized"
	case StatusReturned:
		return "Returned for Revision"
	}
	panic(fmt.Sprintf("review: unhandled status %q", string(s)))
}

func (s Status) Badge() string {
	switch s {
	case StatusDraft:
		return "secondary"
	case StatusSubmitted:
		return "info"
	case StatusReviewed:
		return "primary"
	case StatusFinalized:
		return "success"
	case StatusReturned:
		return "warning"
	}
	panic(fmt.Sprintf("review: unhandled status %q", string(s)))
}
