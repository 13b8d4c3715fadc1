package attendance

import "fmt"

// Punches are the four clock entries of a day. Any of them may be missing.
type Punches struct {
	AMArrival   *TimeOfDay `json:"amArrival"`
	AMDeparture *TimeOfDay `json:"amDeparture"`
	PMArrival   *TimeOfDay `json:"pmArrival"`
	PMDeparture *TimeOfDay `json:"pmDeparture"`
}

// Validate checks that the recorded punches are in chronological order.
// Gaps are allowed.
func (p Punches) Validate() error {
	ordered := []struct {
		name string
		at   *TimeOfDay
	}{
		{"AM arrival", p.AMArrival},
		{"AM departure", p.AMDeparture},
		{"PM arrival", p.PMArrival},
		{"PM departure", p.PMDeparture},
	}
	var prevName string
	var prev *TimeOfDay
	for _, punch := range ordered {
		if punch.at == nil {
			continue
		}
		if !punch.at.Valid() {
			return fmt.Errorf("%s is not a valid time of day", punch.name)
		}
		if prev != nil && *punch.at < *prev {
			return fmt.Errorf("%s (%s) is earlier than %s (%s)", punch.name, punch.at, prevName, prev)
		}
		prevName, prev = punch.name, punch.at
	}
	return nil
}

func (p Punches) Complete() bool {
	return p.AMArrival != nil && p.AMDeparture != nil && p.PMArrival != nil && p.PMDeparture != nil
}

// Schedule is the official office day: a morning and an afternoon block.
type Schedule struct {
	AMStart TimeOfDay
	AMEnd   TimeOfDay
	PMStart TimeOfDay
	PMEnd   TimeOfDay
}

func DefaultSchedule() Schedule {
	return Schedule{
		AMStart: Clock(8, 0),
		AMEnd:   Clock(12, 0),
		PMStart: Clock(13, 0),
		PMEnd:   Clock(17, 0),
	}
}

func ParseSchedule(amStart, amEnd, pmStart, pmEnd string) (Schedule, error) {
	var s Schedule
	fields := []struct {
		value string
		dst   *TimeOfDay
	}{
		{amStart, &s.AMStart},
		{amEnd, &s.AMEnd},
		{pmStart, &s.PMStart},
		{pmEnd, &s.PMEnd},
	}
	for _, f := range fields {
		t, err := ParseTimeOfDay(f.value)
		if err != nil {
			return Schedule{}, fmt.Errorf("office schedule: %w", err)
		}
		*f.dst = t
	}
	if err := s.Validate(); err != nil {
		return Schedule{}, err
	}
	return s, nil
}

func (s Schedule) Validate() error {
	if !(s.AMStart < s.AMEnd && s.AMEnd <= s.PMStart && s.PMStart < s.PMEnd) {
		return fmt.Errorf("office schedule must be ordered: %s-%s, %s-%s", s.AMStart, s.AMEnd, s.PMStart, s.PMEnd)
	}
	return nil
}

// Breakdown holds the undertime contributions of one day in minutes.
type Breakdown struct {
	LateAM  int `json:"lateAm"`
	EarlyAM int `json:"earlyAm"`
	LatePM  int `json:"latePm"`
	EarlyPM int `json:"earlyPm"`
}

func (b Breakdown) Total() int {
	return b.LateAM + b.EarlyAM + b.LatePM + b.EarlyPM
}

// HoursMinutes splits the total into whole hours and remaining minutes.
func (b Breakdown) HoursMinutes() (int, int) {
	return SplitMinutes(b.Total())
}

func SplitMinutes(total int) (int, int) {
	return total / 60, total % 60
}

// Undertime measures each recorded punch against the schedule. A missing
// punch contributes nothing.
func (s Schedule) Undertime(p Punches) Breakdown {
	return Breakdown{
		LateAM:  after(p.AMArrival, s.AMStart),
		EarlyAM: before(p.AMDeparture, s.AMEnd),
		LatePM:  after(p.PMArrival, s.PMStart),
		EarlyPM: before(p.PMDeparture, s.PMEnd),
	}
}

func after(punch *TimeOfDay, mark TimeOfDay) int {
	if punch == nil || *punch <= mark {
		return 0
	}
	return int(*punch - mark)
}

func before(punch *TimeOfDay, mark TimeOfDay) int {
	if punch == nil || *punch >= mark {
		return 0
	}
	return int(mark - *punch)
}
