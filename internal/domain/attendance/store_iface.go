package attendance

import (
	"context"
	"time"
)

type StoreAPI interface {
	GetEmployee(ctx context.Context, employeeID string) (Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)

	// UpsertLog inserts or replaces the row keyed by (employee, date).
	UpsertLog(ctx context.Context, log Log) (Log, error)
	GetLog(ctx context.Context, employeeID string, date time.Time) (Log, error)
	ListLogs(ctx context.Context, employeeID string, from, to time.Time) ([]Log, error)
	ListLogsInRange(ctx context.Context, from, to time.Time) ([]Log, error)
}
