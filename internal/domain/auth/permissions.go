package auth

import "context"

// Route-level permissions. Review transitions are authorised by the review
// capability table instead.
const (
	PermReviewsRead   = "reviews.read"
	PermReviewsWrite  = "reviews.write"
	PermReviewsExport = "reviews.export"
	PermPeriodsManage = "periods.manage"
	PermDTRRead       = "dtr.read"
	PermDTRWrite      = "dtr.write"
	PermDTROffice     = "dtr.office"
	PermDTRExport     = "dtr.export"
	PermAuditRead     = "audit.read"
	PermNotifications = "notifications.read"
	PermMetricsRead   = "metrics.read"
)

var DefaultPermissions = []string{
	PermReviewsRead,
	PermReviewsWrite,
	PermReviewsExport,
	PermPeriodsManage,
	PermDTRRead,
	PermDTRWrite,
	PermDTROffice,
	PermDTRExport,
	PermAuditRead,
	PermNotifications,
	PermMetricsRead,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermReviewsRead,
		PermReviewsWrite,
		PermReviewsExport,
		PermDTRRead,
		PermDTRWrite,
		PermDTRExport,
		PermNotifications,
	},
	RoleDivisionChief: {
		PermReviewsRead,
		PermReviewsWrite,
		PermReviewsExport,
		PermDTRRead,
		PermDTRWrite,
		PermDTRExport,
		PermNotifications,
	},
	RoleHR: {
		PermReviewsRead,
		PermReviewsWrite,
		PermReviewsExport,
		PermPeriodsManage,
		PermDTRRead,
		PermDTRWrite,
		PermDTROffice,
		PermDTRExport,
		PermAuditRead,
		PermNotifications,
		PermMetricsRead,
	},
	RoleHeadOfOffice: {
		PermReviewsRead,
		PermReviewsWrite,
		PermReviewsExport,
		PermDTRRead,
		PermDTROffice,
		PermDTRExport,
		PermAuditRead,
		PermNotifications,
	},
}

func HasPermission(role, permission string) bool {
	for _, perm := range RolePermissions[role] {
		if perm == permission {
			return true
		}
	}
	return false
}

// StaticPermissions answers permission checks from RolePermissions.
type StaticPermissions struct{}

func (StaticPermissions) HasPermission(_ context.Context, role, permission string) (bool, error) {
	return HasPermission(role, permission), nil
}
