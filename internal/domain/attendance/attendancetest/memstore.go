// Package attendancetest provides an in-memory attendance.StoreAPI for tests.
package attendancetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/attendance"
)

type MemStore struct {
	mu        sync.Mutex
	seq       int
	employees map[string]attendance.Employee
	logs      map[string]attendance.Log
}

func NewMemStore() *MemStore {
	return &MemStore{
		employees: map[string]attendance.Employee{},
		logs:      map[string]attendance.Log{},
	}
}

func (m *MemStore) AddEmployee(emp attendance.Employee) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[emp.ID] = emp
}

// Put stores a log as given, without recomputing undertime.
func (m *MemStore) Put(log attendance.Log) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if log.ID == "" {
		m.seq++
		log.ID = fmt.Sprintf("log-%d", m.seq)
	}
	m.logs[key(log.EmployeeID, log.Date)] = log
}

func (m *MemStore) GetEmployee(_ context.Context, employeeID string) (attendance.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	emp, ok := m.employees[employeeID]
	if !ok {
		return attendance.Employee{}, attendance.ErrEmployeeNotFound
	}
	return emp, nil
}

func (m *MemStore) ListEmployees(_ context.Context) ([]attendance.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]attendance.Employee, 0, len(m.employees))
	for _, emp := range m.employees {
		out = append(out, emp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) UpsertLog(_ context.Context, log attendance.Log) (attendance.Log, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	k := key(log.EmployeeID, log.Date)
	if existing, ok := m.logs[k]; ok {
		log.ID = existing.ID
		log.CreatedAt = existing.CreatedAt
	} else {
		m.seq++
		log.ID = fmt.Sprintf("log-%d", m.seq)
		log.CreatedAt = now
	}
	log.UpdatedAt = now
	m.logs[k] = log
	return log, nil
}

func (m *MemStore) GetLog(_ context.Context, employeeID string, date time.Time) (attendance.Log, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	log, ok := m.logs[key(employeeID, date)]
	if !ok {
		return attendance.Log{}, attendance.ErrLogNotFound
	}
	return log, nil
}

func (m *MemStore) ListLogs(_ context.Context, employeeID string, from, to time.Time) ([]attendance.Log, error) {
	return m.filter(func(log attendance.Log) bool {
		return log.EmployeeID == employeeID && inRange(log.Date, from, to)
	}), nil
}

func (m *MemStore) ListLogsInRange(_ context.Context, from, to time.Time) ([]attendance.Log, error) {
	return m.filter(func(log attendance.Log) bool { return inRange(log.Date, from, to) }), nil
}

func (m *MemStore) filter(keep func(attendance.Log) bool) []attendance.Log {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]attendance.Log, 0)
	for _, log := range m.logs {
		if keep(log) {
			out = append(out, log)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out
}

func key(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format(time.DateOnly)
}

func inRange(day, from, to time.Time) bool {
	return !day.Before(from) && !day.After(to)
}
