package notifications

const (
	TypeReviewSubmitted = "review_submitted"
	TypeReviewReviewed  = "review_reviewed"
	TypeReviewReturned  = "review_returned"
	TypeReviewFinalized = "review_finalized"
	TypeReviewReopened  = "review_reopened"
)
