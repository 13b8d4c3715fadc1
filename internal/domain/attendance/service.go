package attendance

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/auth"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/shared/apperror"
)

const maxRemarksLength = 1000

type Service struct {
	store    StoreAPI
	schedule Schedule
	Now      func() time.Time
}

func NewService(store StoreAPI, schedule Schedule) *Service {
	return &Service{store: store, schedule: schedule, Now: time.Now}
}

func (s *Service) Schedule() Schedule {
	return s.schedule
}

// UpsertLog records the punches for one employee-day and stores the
// undertime computed from them. Employees write their own logs; HR and the
// chief of the employee's division may write on their behalf.
func (s *Service) UpsertLog(ctx context.Context, actor auth.Actor, employeeID string, date time.Time, in LogInput) (Log, error) {
	emp, err := s.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return Log{}, apperror.Storage(err, "failed to load employee")
	}
	if !canWrite(actor, emp) {
		return Log{}, ErrForbidden
	}

	day := dateOnly(date)
	if day.After(dateOnly(s.Now())) {
		return Log{}, ErrFutureDate
	}
	if err := in.Punches.Validate(); err != nil {
		return Log{}, apperror.Detail(ErrInvalidPunches, "%v", err)
	}
	remarks := strings.TrimSpace(in.Remarks)
	if len(remarks) > maxRemarksLength {
		return Log{}, ErrRemarksTooLong
	}

	hours, minutes := s.schedule.Undertime(in.Punches).HoursMinutes()
	saved, err := s.store.UpsertLog(ctx, Log{
		EmployeeID:       emp.ID,
		Date:             day,
		Punches:          in.Punches,
		UndertimeHours:   hours,
		UndertimeMinutes: minutes,
		Remarks:          remarks,
		RecordedBy:       actor.UserID,
	})
	if err != nil {
		return Log{}, apperror.Storage(err, "failed to save DTR entry")
	}
	return saved, nil
}

func (s *Service) GetLog(ctx context.Context, actor auth.Actor, employeeID string, date time.Time) (Log, error) {
	if _, err := s.readableEmployee(ctx, actor, employeeID); err != nil {
		return Log{}, err
	}
	log, err := s.store.GetLog(ctx, employeeID, dateOnly(date))
	if err != nil {
		return Log{}, apperror.Storage(err, "failed to load DTR entry")
	}
	return log, nil
}

func (s *Service) ListLogs(ctx context.Context, actor auth.Actor, employeeID string, month Month) ([]Log, error) {
	if _, err := s.readableEmployee(ctx, actor, employeeID); err != nil {
		return nil, err
	}
	logs, err := s.store.ListLogs(ctx, employeeID, month.First(), month.Last())
	if err != nil {
		return nil, apperror.Storage(err, "failed to list DTR entries")
	}
	return logs, nil
}

// MonthlySummary returns the month's logs for one employee with the roll-up
// computed from their stored undertime.
func (s *Service) MonthlySummary(ctx context.Context, actor auth.Actor, employeeID string, month Month) (MonthlyReport, error) {
	emp, err := s.readableEmployee(ctx, actor, employeeID)
	if err != nil {
		return MonthlyReport{}, err
	}
	logs, err := s.store.ListLogs(ctx, employeeID, month.First(), month.Last())
	if err != nil {
		return MonthlyReport{}, apperror.Storage(err, "failed to list DTR entries")
	}
	return MonthlyReport{Employee: emp, Summary: Summarize(month, logs), Logs: logs}, nil
}

// OfficeSummary rolls up every employee for the month, sorted by name.
func (s *Service) OfficeSummary(ctx context.Context, actor auth.Actor, month Month) ([]EmployeeSummary, error) {
	if !actor.IsOfficeWide() {
		return nil, ErrForbidden
	}
	employees, err := s.store.ListEmployees(ctx)
	if err != nil {
		return nil, apperror.Storage(err, "failed to list employees")
	}
	logs, err := s.store.ListLogsInRange(ctx, month.First(), month.Last())
	if err != nil {
		return nil, apperror.Storage(err, "failed to list DTR entries")
	}

	byEmployee := make(map[string][]Log, len(employees))
	for _, log := range logs {
		byEmployee[log.EmployeeID] = append(byEmployee[log.EmployeeID], log)
	}
	out := make([]EmployeeSummary, 0, len(employees))
	for _, emp := range employees {
		out = append(out, EmployeeSummary{Employee: emp, Summary: Summarize(month, byEmployee[emp.ID])})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Employee.Name < out[j].Employee.Name })
	return out, nil
}

func (s *Service) readableEmployee(ctx context.Context, actor auth.Actor, employeeID string) (Employee, error) {
	emp, err := s.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return Employee{}, apperror.Storage(err, "failed to load employee")
	}
	if !canRead(actor, emp) {
		return Employee{}, ErrForbidden
	}
	return emp, nil
}

func canWrite(actor auth.Actor, emp Employee) bool {
	if actor.EmployeeID != "" && actor.EmployeeID == emp.ID {
		return true
	}
	return actor.HasRole(auth.RoleHR) || actor.SupervisesDivision(emp.DivisionID)
}

func canRead(actor auth.Actor, emp Employee) bool {
	return canWrite(actor, emp) || actor.IsOfficeWide()
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
