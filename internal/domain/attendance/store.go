package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/carlpacpaco9-design/HRIS-sub001/internal/platform/querier"
)

const microsPerMinute = int64(time.Minute / time.Microsecond)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const employeeSelect = `
    SELECT id, first_name || ' ' || last_name, COALESCE(division_id::text, ''), position
    FROM employees
  `

const logColumns = `id, employee_id, log_date, am_arrival, am_departure, pm_arrival, pm_departure,
           undertime_hours, undertime_minutes, remarks, COALESCE(recorded_by::text, ''),
           created_at, updated_at`

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	var emp Employee
	err := s.DB.QueryRow(ctx, employeeSelect+" WHERE id = $1", employeeID).
		Scan(&emp.ID, &emp.Name, &emp.DivisionID, &emp.Position)
	if isNotFound(err) {
		return Employee{}, ErrEmployeeNotFound
	}
	return emp, err
}

func (s *Store) ListEmployees(ctx context.Context) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, employeeSelect+" ORDER BY last_name, first_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := make([]Employee, 0)
	for rows.Next() {
		var emp Employee
		if err := rows.Scan(&emp.ID, &emp.Name, &emp.DivisionID, &emp.Position); err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

func (s *Store) UpsertLog(ctx context.Context, log Log) (Log, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO dtr_logs (employee_id, log_date, am_arrival, am_departure, pm_arrival, pm_departure,
                          undertime_hours, undertime_minutes, remarks, recorded_by)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    ON CONFLICT (employee_id, log_date) DO UPDATE SET
      am_arrival = EXCLUDED.am_arrival,
      am_departure = EXCLUDED.am_departure,
      pm_arrival = EXCLUDED.pm_arrival,
      pm_departure = EXCLUDED.pm_departure,
      undertime_hours = EXCLUDED.undertime_hours,
      undertime_minutes = EXCLUDED.undertime_minutes,
      remarks = EXCLUDED.remarks,
      recorded_by = EXCLUDED.recorded_by,
      updated_at = now()
    RETURNING `+logColumns,
		log.EmployeeID, log.Date,
		toPGTime(log.Punches.AMArrival), toPGTime(log.Punches.AMDeparture),
		toPGTime(log.Punches.PMArrival), toPGTime(log.Punches.PMDeparture),
		log.UndertimeHours, log.UndertimeMinutes, log.Remarks, nullIfEmpty(log.RecordedBy))
	return scanLog(row)
}

func (s *Store) GetLog(ctx context.Context, employeeID string, date time.Time) (Log, error) {
	log, err := scanLog(s.DB.QueryRow(ctx, `
    SELECT `+logColumns+`
    FROM dtr_logs
    WHERE employee_id = $1 AND log_date = $2
  `, employeeID, date))
	if isNotFound(err) {
		return Log{}, ErrLogNotFound
	}
	return log, err
}

func (s *Store) ListLogs(ctx context.Context, employeeID string, from, to time.Time) ([]Log, error) {
	return s.listLogs(ctx, `
    SELECT `+logColumns+`
    FROM dtr_logs
    WHERE employee_id = $1 AND log_date BETWEEN $2 AND $3
    ORDER BY log_date
  `, employeeID, from, to)
}

func (s *Store) ListLogsInRange(ctx context.Context, from, to time.Time) ([]Log, error) {
	return s.listLogs(ctx, `
    SELECT `+logColumns+`
    FROM dtr_logs
    WHERE log_date BETWEEN $1 AND $2
    ORDER BY employee_id, log_date
  `, from, to)
}

func (s *Store) listLogs(ctx context.Context, query string, args ...any) ([]Log, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]Log, 0)
	for rows.Next() {
		log, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

func scanLog(row pgx.Row) (Log, error) {
	var log Log
	var amIn, amOut, pmIn, pmOut pgtype.Time
	err := row.Scan(&log.ID, &log.EmployeeID, &log.Date, &amIn, &amOut, &pmIn, &pmOut,
		&log.UndertimeHours, &log.UndertimeMinutes, &log.Remarks, &log.RecordedBy,
		&log.CreatedAt, &log.UpdatedAt)
	if err != nil {
		return Log{}, err
	}
	log.Punches = Punches{
		AMArrival:   fromPGTime(amIn),
		AMDeparture: fromPGTime(amOut),
		PMArrival:   fromPGTime(pmIn),
		PMDeparture: fromPGTime(pmOut),
	}
	return log, nil
}

func toPGTime(t *TimeOfDay) pgtype.Time {
	if t == nil {
		return pgtype.Time{}
	}
	return pgtype.Time{Microseconds: int64(*t) * microsPerMinute, Valid: true}
}

func fromPGTime(t pgtype.Time) *TimeOfDay {
	if !t.Valid {
		return nil
	}
	v := TimeOfDay(t.Microseconds / microsPerMinute)
	return &v
}

func isNotFound(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
