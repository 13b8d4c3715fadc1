package review

import (
	"time"

	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/rating"
)

const (
	CategoryCore      = "Core Function"
	CategoryStrategic = "Strategic Function"
	CategorySupport   = "Support Function"
)

type Period struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	CreatedAt time.Time `json:"createdAt"`
}

type PeriodInput struct {
	Name      string
	StartDate time.Time
	EndDate   time.Time
}

type Output struct {
	ID                      string        `json:"id"`
	DocumentID              string        `json:"documentId"`
	Category                string        `json:"category"`
	MajorFinalOutput        string        `json:"majorFinalOutput"`
	SuccessIndicatorTarget  string        `json:"successIndicatorTarget"`
	SuccessIndicatorMeasure string        `json:"successIndicatorMeasure"`
	ActualAccomplishments   string        `json:"actualAccomplishments"`
	Remarks                 string        `json:"remarks"`
	Ratings                 rating.Scores `json:"ratings"`
	RatingAverage           *float64      `json:"ratingAverage"`
	SortOrder               int           `json:"sortOrder"`
	CreatedAt               time.Time     `json:"createdAt"`
	UpdatedAt               time.Time     `json:"updatedAt"`
}

// OutputInput carries the employee-editable text of an output.
type OutputInput struct {
	Category                string
	MajorFinalOutput        string
	SuccessIndicatorTarget  string
	SuccessIndicatorMeasure string
	ActualAccomplishments   string
	Remarks                 string
}

type Document struct {
	ID                 string     `json:"id"`
	EmployeeID         string     `json:"employeeId"`
	EmployeeName       string     `json:"employeeName"`
	DivisionID         string     `json:"divisionId"`
	PeriodID           string     `json:"periodId"`
	PeriodName         string     `json:"periodName"`
	Status             Status     `json:"status"`
	ReviewComments     string     `json:"reviewComments"`
	FinalRemarks       string     `json:"finalRemarks"`
	FinalAverageRating *float64   `json:"finalAverageRating"`
	AdjectivalRating   string     `json:"adjectivalRating"`
	Version            int        `json:"version"`
	SubmittedAt        *time.Time `json:"submittedAt"`
	ReviewedAt         *time.Time `json:"reviewedAt"`
	FinalizedAt        *time.Time `json:"finalizedAt"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
	// Outputs holds the non-deleted outputs in display order. List queries
	// leave it empty.
	Outputs []Output `json:"outputs,omitempty"`
}

type CategoryGroup struct {
	Category string   `json:"category"`
	Outputs  []Output `json:"outputs"`
}

// DocumentView is a document prepared for display to a specific actor.
type DocumentView struct {
	Document
	StatusLabel       string          `json:"statusLabel"`
	StatusBadge       string          `json:"statusBadge"`
	Groups            []CategoryGroup `json:"groups"`
	PreviewAverage    *float64        `json:"previewAverage"`
	PreviewAdjectival string          `json:"previewAdjectival"`
	AvailableActions  []Action        `json:"availableActions"`
}

type Filter struct {
	EmployeeID string
	DivisionID string
	PeriodID   string
	Status     Status
}

// TransitionRequest is the caller-supplied part of a status change.
type TransitionRequest struct {
	ExpectedVersion *int
	ReviewComments  string
	FinalRemarks    string
	Ratings         map[string]rating.Scores
}

// Transition is a fully validated write handed to the store. The store
// applies it only while the document still has status From and version
// ExpectedVersion.
type Transition struct {
	DocumentID      string
	From            Status
	To              Status
	ExpectedVersion int
	ReviewComments  *string
	FinalRemarks    *string
	Ratings         map[string]rating.Scores
	OutputAverages  map[string]*float64
	FinalAverage    *float64
	Adjectival      string

	// ClearRatings resets every output's ratings before Ratings is applied.
	ClearRatings bool
	At           time.Time
}
