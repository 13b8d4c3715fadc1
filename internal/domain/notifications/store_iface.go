package notifications

import "context"

type StoreAPI interface {
	CreateNotification(ctx context.Context, userID, ntype, title, body string) error
	UserEmail(ctx context.Context, userID string) (string, error)
	ListNotifications(ctx context.Context, userID string, limit, offset int) ([]Notification, error)
	CountNotifications(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, notificationID string) error

	// EmployeeUserID resolves the login of an employee; empty when none.
	EmployeeUserID(ctx context.Context, employeeID string) (string, error)
	DivisionChiefUserIDs(ctx context.Context, divisionID string) ([]string, error)
}
