package scheduling

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCompleted, StatusConfirmed, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		// Re-asserting the current status is a no-op, never an error.
		{StatusPending, StatusPending, true},
		{StatusCompleted, StatusCompleted, true},
		{StatusCancelled, StatusCancelled, true},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled} {
		if !IsValidStatus(s) {
			t.Errorf("expected %s valid", s)
		}
	}
	for _, s := range []Status{"", "pending", "DONE", "ARCHIVED"} {
		if IsValidStatus(s) {
			t.Errorf("expected %q invalid", s)
		}
	}
}

func TestNormalizeCategory(t *testing.T) {
	cases := []struct {
		in         string
		want       Category
		recognized bool
	}{
		{"APPOINTMENT", CategoryAppointment, true},
		{"WEEKLY_CHECKUP", CategoryWeeklyCheckup, true},
		{"HOME_VISIT", CategoryHomeVisit, true},
		{"OTHER", CategoryOther, true},
		{"CHECKUP", CategoryWeeklyCheckup, true},
		{"EMERGENCY", CategoryAppointment, true},
		{"ROUTINE", CategoryAppointment, true},
		{"appointment", CategoryAppointment, false},
		{"GARDENING", CategoryAppointment, false},
		{"", CategoryAppointment, false},
	}
	for _, tc := range cases {
		got, recognized := NormalizeCategory(tc.in)
		if got != tc.want || recognized != tc.recognized {
			t.Errorf("NormalizeCategory(%q) = (%s, %v), want (%s, %v)",
				tc.in, got, recognized, tc.want, tc.recognized)
		}
	}
}

func TestDisplayColor(t *testing.T) {
	if DisplayColor(CategoryWeeklyCheckup) != "#10B981" {
		t.Errorf("unexpected color for WEEKLY_CHECKUP")
	}
	if DisplayColor(Category("BOGUS")) != DisplayColor(CategoryAppointment) {
		t.Errorf("unknown category should use the APPOINTMENT color")
	}
}

func TestDisplayTitle(t *testing.T) {
	if got := DisplayTitle("Ada Hughes", "Sam Okafor"); got != "Ada Hughes with Sam Okafor" {
		t.Errorf("got %q", got)
	}
	if got := DisplayTitle("Ada Hughes", ""); got != "Ada Hughes" {
		t.Errorf("got %q", got)
	}
	if got := DisplayTitle("", ""); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestAppointmentOverlaps(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	a := &Appointment{Date: day, StartTime: "09:00", EndTime: "11:00"}

	window := func(start, end string) (time.Time, time.Time) {
		s := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
		parse := func(v string) time.Time {
			t, _ := time.Parse("15:04", v)
			return time.Date(s.Year(), s.Month(), s.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
		}
		return parse(start), parse(end)
	}

	cases := []struct {
		start, end string
		want       bool
	}{
		{"08:00", "10:00", true},  // overlaps the front
		{"10:00", "12:00", true},  // overlaps the back
		{"09:30", "10:30", true},  // contained
		{"08:00", "12:00", true},  // contains
		{"11:00", "12:00", false}, // starts exactly at the end
		{"07:00", "09:00", false}, // ends exactly at the start
		{"12:00", "13:00", false},
	}
	for _, tc := range cases {
		s, e := window(tc.start, tc.end)
		if got := a.Overlaps(s, e); got != tc.want {
			t.Errorf("Overlaps(%s-%s) = %v, want %v", tc.start, tc.end, got, tc.want)
		}
	}
}
