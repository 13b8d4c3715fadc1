package attendance

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSummarizeCountsAbsences(t *testing.T) {
	june := Month{2026, time.June}
	logs := make([]Log, 0, 20)
	for d := 1; d <= 26; d++ {
		date := day(2026, time.June, d)
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		logs = append(logs, Log{EmployeeID: "e1", Date: date})
	}
	if len(logs) != 20 {
		t.Fatalf("fixture expected 20 logs, got %d", len(logs))
	}

	s := Summarize(june, logs)
	if s.WorkingDays != 22 || s.DaysLogged != 20 || s.DaysAbsent != 2 {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestSummarizeUsesStoredUndertime(t *testing.T) {
	june := Month{2026, time.June}
	logs := []Log{
		{Date: day(2026, time.June, 1), UndertimeHours: 1, UndertimeMinutes: 10},
		{Date: day(2026, time.June, 2), UndertimeMinutes: 55},
		{Date: day(2026, time.June, 3)},
		// weekend entries still count
		{Date: day(2026, time.June, 6), UndertimeMinutes: 5},
		// outside the month
		{Date: day(2026, time.July, 1), UndertimeHours: 8},
	}

	s := Summarize(june, logs)
	if s.TotalUndertime != 130 {
		t.Fatalf("expected 130 minutes, got %d", s.TotalUndertime)
	}
	if s.UndertimeHours != 2 || s.UndertimeMinutes != 10 {
		t.Fatalf("expected 2h 10m, got %dh %dm", s.UndertimeHours, s.UndertimeMinutes)
	}
	if s.DaysLogged != 4 || s.DaysWithUndertime != 3 {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestSummarizeToleratesNegativeAbsences(t *testing.T) {
	feb := Month{2026, time.February}
	logs := make([]Log, 0, 28)
	for d := 1; d <= 28; d++ {
		logs = append(logs, Log{Date: day(2026, time.February, d)})
	}
	s := Summarize(feb, logs)
	if s.DaysAbsent != 20-28 {
		t.Fatalf("expected -8, got %d", s.DaysAbsent)
	}
}

func TestSummarizeDeduplicatesDates(t *testing.T) {
	june := Month{2026, time.June}
	s := Summarize(june, []Log{
		{Date: day(2026, time.June, 1)},
		{Date: time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)},
	})
	if s.DaysLogged != 1 {
		t.Fatalf("expected 1 logged day, got %d", s.DaysLogged)
	}
}

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2026-06")
	if err != nil || m != (Month{2026, time.June}) {
		t.Fatalf("unexpected %v (%v)", m, err)
	}
	if m.Last() != day(2026, time.June, 30) {
		t.Fatalf("unexpected last day %v", m.Last())
	}
	if _, err := ParseMonth("June 2026"); err == nil {
		t.Fatalf("expected error")
	}
}
