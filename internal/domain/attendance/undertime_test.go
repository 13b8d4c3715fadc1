package attendance

import (
	"testing"
	"time"
)

func at(value string) *TimeOfDay {
	t, err := ParseTimeOfDay(value)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestUndertimeExactScheduleIsZero(t *testing.T) {
	b := DefaultSchedule().Undertime(Punches{at("08:00"), at("12:00"), at("13:00"), at("17:00")})
	if b.Total() != 0 {
		t.Fatalf("expected 0, got %d", b.Total())
	}
}

func TestUndertimeSumsEachContribution(t *testing.T) {
	b := DefaultSchedule().Undertime(Punches{at("08:15"), at("11:45"), at("13:10"), at("16:30")})
	want := Breakdown{LateAM: 15, EarlyAM: 15, LatePM: 10, EarlyPM: 30}
	if b != want {
		t.Fatalf("expected %+v, got %+v", want, b)
	}
	h, m := b.HoursMinutes()
	if h != 1 || m != 10 {
		t.Fatalf("expected 1h 10m, got %dh %dm", h, m)
	}
}

func TestUndertimeMissingPunchContributesZero(t *testing.T) {
	b := DefaultSchedule().Undertime(Punches{nil, at("12:00"), at("13:00"), at("17:00")})
	if b.Total() != 0 {
		t.Fatalf("expected 0, got %d", b.Total())
	}
	b = DefaultSchedule().Undertime(Punches{})
	if b.Total() != 0 {
		t.Fatalf("expected 0 for empty day, got %d", b.Total())
	}
}

func TestUndertimeIgnoresEarlyArrivalAndOvertime(t *testing.T) {
	b := DefaultSchedule().Undertime(Punches{at("07:30"), at("12:30"), at("12:45"), at("18:00")})
	if b.Total() != 0 {
		t.Fatalf("expected 0, got %+v", b)
	}
}

func TestUndertimeUsesConfiguredSchedule(t *testing.T) {
	s, err := ParseSchedule("07:00", "11:00", "12:00", "16:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := s.Undertime(Punches{at("08:00"), nil, nil, at("15:00")})
	if b.Total() != 120 {
		t.Fatalf("expected 120, got %d", b.Total())
	}
}

func TestParseScheduleRejectsDisorder(t *testing.T) {
	if _, err := ParseSchedule("08:00", "12:00", "11:00", "17:00"); err == nil {
		t.Fatalf("expected error for overlapping blocks")
	}
	if _, err := ParseSchedule("8am", "12:00", "13:00", "17:00"); err == nil {
		t.Fatalf("expected error for bad time")
	}
}

func TestPunchesValidate(t *testing.T) {
	if err := (Punches{at("08:00"), nil, at("13:00"), at("17:00")}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (Punches{at("08:00"), at("07:59"), nil, nil}).Validate(); err == nil {
		t.Fatalf("expected ordering error")
	}
	if err := (Punches{at("13:00"), nil, nil, at("12:00")}).Validate(); err == nil {
		t.Fatalf("expected ordering error across gap")
	}
	bad := TimeOfDay(24 * 60)
	if err := (Punches{AMArrival: &bad}).Validate(); err == nil {
		t.Fatalf("expected range error")
	}
}

func TestParseTimeOfDay(t *testing.T) {
	cases := map[string]TimeOfDay{
		"00:00":    0,
		"08:15":    Clock(8, 15),
		"23:59":    Clock(23, 59),
		"13:05:42": Clock(13, 5),
	}
	for in, want := range cases {
		got, err := ParseTimeOfDay(in)
		if err != nil || got != want {
			t.Fatalf("%s: expected %v, got %v (%v)", in, want, got, err)
		}
	}
	for _, in := range []string{"", "8:00", "24:00", "12:60", "12-00", "ab:cd", "08:00:5", "08:00:005", "08:00:60"} {
		if _, err := ParseTimeOfDay(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestTimeOfDayText(t *testing.T) {
	var v TimeOfDay
	if err := v.UnmarshalText([]byte("16:30")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := v.MarshalText()
	if err != nil || string(out) != "16:30" {
		t.Fatalf("expected 16:30, got %s (%v)", out, err)
	}
}

func TestWorkingDays(t *testing.T) {
	cases := []struct {
		month Month
		want  int
	}{
		{Month{2026, time.June}, 22},
		{Month{2026, time.February}, 20},
		{Month{2024, time.February}, 21},
		{Month{2026, time.August}, 21},
	}
	for _, tc := range cases {
		if got := WorkingDays(tc.month); got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.month, tc.want, got)
		}
	}
}
