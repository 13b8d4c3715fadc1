package attendance

import "time"

type Employee struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	DivisionID string `json:"divisionId"`
	Position   string `json:"position"`
}

// Log is one DTR row. Undertime is stored as computed at write time.
type Log struct {
	ID               string    `json:"id"`
	EmployeeID       string    `json:"employeeId"`
	Date             time.Time `json:"date"`
	Punches          Punches   `json:"punches"`
	UndertimeHours   int       `json:"undertimeHours"`
	UndertimeMinutes int       `json:"undertimeMinutes"`
	Remarks          string    `json:"remarks"`
	RecordedBy       string    `json:"recordedBy,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (l Log) UndertimeTotal() int {
	return l.UndertimeHours*60 + l.UndertimeMinutes
}

type LogInput struct {
	Punches Punches
	Remarks string
}

// MonthlyReport is an employee's month of logs with its roll-up.
type MonthlyReport struct {
	Employee Employee `json:"employee"`
	Summary  Summary  `json:"summary"`
	Logs     []Log    `json:"logs"`
}

type EmployeeSummary struct {
	Employee Employee `json:"employee"`
	Summary  Summary  `json:"summary"`
}
