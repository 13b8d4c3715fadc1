package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/review"
)

// ReviewSink turns review transitions into notifications: division chiefs
// hear about submissions, the owner hears about everything done to their
// document by someone else.
type ReviewSink struct {
	Service *Service
	Store   StoreAPI
}

func (r ReviewSink) Publish(ctx context.Context, evt review.Event) error {
	if evt.Kind != review.EventTransition {
		return nil
	}
	ntype, title, body := message(evt)
	if ntype == "" {
		return nil
	}

	var recipients []string
	if evt.To == review.StatusSubmitted {
		chiefs, err := r.Store.DivisionChiefUserIDs(ctx, evt.DivisionID)
		if err != nil {
			return err
		}
		recipients = chiefs
	} else {
		owner, err := r.Store.EmployeeUserID(ctx, evt.EmployeeID)
		if err != nil {
			return err
		}
		recipients = []string{owner}
	}

	var errs []error
	for _, userID := range recipients {
		if userID == "" || userID == evt.Actor.UserID {
			continue
		}
		if err := r.Service.Create(ctx, userID, ntype, title, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func message(evt review.Event) (string, string, string) {
	period := evt.PeriodName
	switch evt.To {
	case review.StatusSubmitted:
		return TypeReviewSubmitted, "IPCR submitted for review",
			fmt.Sprintf("An IPCR for %s was submitted and is waiting for your review.", period)
	case review.StatusReviewed:
		return TypeReviewReviewed, "IPCR reviewed",
			fmt.Sprintf("Your IPCR for %s has been reviewed and forwarded for rating.", period)
	case review.StatusReturned:
		return TypeReviewReturned, "IPCR returned for revision",
			fmt.Sprintf("Your IPCR for %s was returned. See the final remarks and revise your outputs.", period)
	case review.StatusFinalized:
		return TypeReviewFinalized, "IPCR finalized",
			fmt.Sprintf("Your IPCR for %s has been rated and finalized.", period)
	case review.StatusDraft:
		return TypeReviewReopened, "IPCR reopened",
			fmt.Sprintf("Your IPCR for %s is back in draft and can be edited.", period)
	}
	return "", "", ""
}
