package attendance

import "time"

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

func ParseMonth(value string) (Month, error) {
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return Month{}, err
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) String() string {
	return m.First().Format("2006-01")
}

func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Last is the final calendar day of the month.
func (m Month) Last() time.Time {
	return m.First().AddDate(0, 1, -1)
}

func (m Month) Contains(day time.Time) bool {
	return day.Year() == m.Year && day.Month() == m.Month
}

// WorkingDays counts the weekdays of the month. Holidays are not modelled.
func WorkingDays(m Month) int {
	count := 0
	for day := m.First(); day.Month() == m.Month; day = day.AddDate(0, 0, 1) {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			count++
		}
	}
	return count
}

type Summary struct {
	Month             string `json:"month"`
	WorkingDays       int    `json:"workingDays"`
	DaysLogged        int    `json:"daysLogged"`
	DaysAbsent        int    `json:"daysAbsent"`
	DaysWithUndertime int    `json:"daysWithUndertime"`
	TotalUndertime    int    `json:"totalUndertimeMinutes"`
	UndertimeHours    int    `json:"undertimeHours"`
	UndertimeMinutes  int    `json:"undertimeMinutes"`
}

// Summarize rolls up stored logs for the month. Logs outside the month are
// ignored; weekend logs count as logged days and their undertime is included,
// so DaysAbsent can go negative.
func Summarize(m Month, logs []Log) Summary {
	s := Summary{Month: m.String(), WorkingDays: WorkingDays(m)}
	dates := make(map[string]struct{}, len(logs))
	for _, log := range logs {
		if !m.Contains(log.Date) {
			continue
		}
		dates[log.Date.Format(time.DateOnly)] = struct{}{}
		minutes := log.UndertimeTotal()
		if minutes > 0 {
			s.DaysWithUndertime++
		}
		s.TotalUndertime += minutes
	}
	s.DaysLogged = len(dates)
	s.DaysAbsent = s.WorkingDays - s.DaysLogged
	s.UndertimeHours, s.UndertimeMinutes = SplitMinutes(s.TotalUndertime)
	return s
}
