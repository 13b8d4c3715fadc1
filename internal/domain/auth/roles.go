package auth

const (
	RoleEmployee      = "employee"
	RoleDivisionChief = "division_chief"
	RoleHR            = "hr"
	RoleHeadOfOffice  = "head_of_office"

	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

var Roles = []string{RoleEmployee, RoleDivisionChief, RoleHR, RoleHeadOfOffice}

func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Actor is the authenticated caller as seen by the domain services.
type Actor struct {
	UserID     string `json:"userId"`
	EmployeeID string `json:"employeeId"`
	DivisionID string `json:"divisionId"`
	Role       string `json:"role"`
}

func (a Actor) HasRole(roles ...string) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// IsOfficeWide reports whether the actor can see every division.
func (a Actor) IsOfficeWide() bool {
	return a.HasRole(RoleHR, RoleHeadOfOffice)
}

// SupervisesDivision reports whether the actor is the chief of divisionID.
func (a Actor) SupervisesDivision(divisionID string) bool {
	return a.Role == RoleDivisionChief && a.DivisionID != "" && a.DivisionID == divisionID
}
