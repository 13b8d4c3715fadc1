package review

import "github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/auth"

type Action string

const (
	ActionSubmit      Action = "submit"
	ActionCancel      Action = "cancel"
	ActionReview      Action = "review"
	ActionFinalize    Action = "finalize"
	ActionReturn      Action = "return"
	ActionReopen      Action = "reopen"
	ActionEditOutputs Action = "edit_outputs"
	ActionRateOutputs Action = "rate_outputs"
)

// capability is one row of the who-may-do-what table. For actions that do
// not change status, from and to are equal.
type capability struct {
	from  Status
	to    Status
	owner bool
	roles []string
	// notOwner forbids acting on one's own document even with a listed role.
	notOwner bool
}

var capabilities = map[Action]capability{
	ActionSubmit:      {from: StatusDraft, to: StatusSubmitted, owner: true},
	ActionCancel:      {from: StatusSubmitted, to: StatusDraft, owner: true, roles: []string{auth.RoleHR}},
	ActionReview:      {from: StatusSubmitted, to: StatusReviewed, roles: []string{auth.RoleDivisionChief, auth.RoleHR}, notOwner: true},
	ActionFinalize:    {from: StatusReviewed, to: StatusFinalized, roles: []string{auth.RoleHR, auth.RoleHeadOfOffice}, notOwner: true},
	ActionReturn:      {from: StatusReviewed, to: StatusReturned, roles: []string{auth.RoleHR, auth.RoleHeadOfOffice}, notOwner: true},
	ActionReopen:      {from: StatusReturned, to: StatusDraft, owner: true, roles: []string{auth.RoleHR}},
	ActionRateOutputs: {from: StatusReviewed, to: StatusReviewed, roles: []string{auth.RoleHR, auth.RoleHeadOfOffice}, notOwner: true},
}

var actionOrder = []Action{
	ActionEditOutputs,
	ActionSubmit,
	ActionCancel,
	ActionReview,
	ActionRateOutputs,
	ActionFinalize,
	ActionReturn,
	ActionReopen,
}

// Allowed reports whether the actor holds the capability for action on doc,
// ignoring the document's current status.
func Allowed(actor auth.Actor, doc Document, action Action) bool {
	isOwner := actor.EmployeeID != "" && actor.EmployeeID == doc.EmployeeID
	if action == ActionEditOutputs {
		return isOwner
	}
	c, ok := capabilities[action]
	if !ok {
		return false
	}
	if c.owner && isOwner {
		return true
	}
	if c.notOwner && isOwner {
		return false
	}
	for _, role := range c.roles {
		if actor.Role != role {
			continue
		}
		if role == auth.RoleDivisionChief {
			return actor.SupervisesDivision(doc.DivisionID)
		}
		return true
	}
	return false
}

// AvailableActions lists what the actor can do to doc in its current state.
func AvailableActions(actor auth.Actor, doc Document) []Action {
	out := make([]Action, 0, 2)
	for _, action := range actionOrder {
		if !Allowed(actor, doc, action) {
			continue
		}
		if action == ActionEditOutputs {
			if doc.Status.Editable() {
				out = append(out, action)
			}
			continue
		}
		if capabilities[action].from == doc.Status {
			out = append(out, action)
		}
	}
	return out
}

// CanView reports read access: the owner, office-wide roles and the chief of
// the owner's division.
func CanView(actor auth.Actor, doc Document) bool {
	if actor.EmployeeID != "" && actor.EmployeeID == doc.EmployeeID {
		return true
	}
	return actor.IsOfficeWide() || actor.SupervisesDivision(doc.DivisionID)
}
