// Package timeutil holds the wall-clock helpers the scheduling engine is
// built on. All times are agency-local: a time of day is an "HH:mm" string
// and a calendar date carries no time component, so combining the two never
// performs a timezone conversion.
package timeutil

import (
	"fmt"
	"regexp"
	"time"
)

// timeOfDayPattern accepts 24-hour "HH:mm" with an optional leading zero on
// the hour ("9:30" and "09:30" are both valid, "9:5" is not).
var timeOfDayPattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// TimeOfDay is a parsed wall-clock time within a day.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ErrInvalidTimeFormat reports a string that is not a valid "HH:mm" time.
type ErrInvalidTimeFormat struct {
	Value string
}

func (e *ErrInvalidTimeFormat) Error() string {
	return fmt.Sprintf("invalid time format %q, expected HH:mm", e.Value)
}

// String renders the time of day as zero-padded "HH:mm".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseTimeOfDay parses a 24-hour "HH:mm" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if !timeOfDayPattern.MatchString(s) {
		return TimeOfDay{}, &ErrInvalidTimeFormat{Value: s}
	}
	t, err := time.Parse("15:04", normalize(s))
	if err != nil {
		return TimeOfDay{}, &ErrInvalidTimeFormat{Value: s}
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// IsValidTimeOfDay reports whether s is a valid "HH:mm" string.
func IsValidTimeOfDay(s string) bool {
	return timeOfDayPattern.MatchString(s)
}

func normalize(s string) string {
	if len(s) == 4 {
		return "0" + s
	}
	return s
}

// Combine anchors a time of day on a calendar date, producing a comparable
// instant. The date's own clock component is discarded.
func Combine(date time.Time, tod TimeOfDay) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), tod.Hour, tod.Minute, 0, 0, date.Location())
}

// CombineString parses s and anchors it on date.
func CombineString(date time.Time, s string) (time.Time, error) {
	tod, err := ParseTimeOfDay(s)
	if err != nil {
		return time.Time{}, err
	}
	return Combine(date, tod), nil
}

// NextOccurrence returns the soonest date on or after from whose weekday is
// weekday. If from already falls on that weekday the same date is returned,
// otherwise the result is 1-6 days ahead. The returned date is truncated to
// midnight in from's location.
func NextOccurrence(weekday time.Weekday, from time.Time) time.Time {
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	offset := (int(weekday) - int(day.Weekday()) + 7) % 7
	return day.AddDate(0, 0, offset)
}
