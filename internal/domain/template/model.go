package template

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a template id does not exist.
var ErrNotFound = errors.New("template not found")

// ErrNoValidVisits is returned when a template has no visit with the day,
// time window, and worker needed for materialization.
var ErrNoValidVisits = errors.New("template has no valid visits to apply")

// DayOfWeek is the symbolic weekday a template visit repeats on.
type DayOfWeek string

const (
	DayMonday    DayOfWeek = "MONDAY"
	DayTuesday   DayOfWeek = "TUESDAY"
	DayWednesday DayOfWeek = "WEDNESDAY"
	DayThursday  DayOfWeek = "THURSDAY"
	DayFriday    DayOfWeek = "FRIDAY"
	DaySaturday  DayOfWeek = "SATURDAY"
	DaySunday    DayOfWeek = "SUNDAY"
)

var weekdays = map[DayOfWeek]time.Weekday{
	DayMonday:    time.Monday,
	DayTuesday:   time.Tuesday,
	DayWednesday: time.Wednesday,
	DayThursday:  time.Thursday,
	DayFriday:    time.Friday,
	DaySaturday:  time.Saturday,
	DaySunday:    time.Sunday,
}

// Weekday maps the symbolic day onto time.Weekday. The boolean is false for
// unknown values.
func (d DayOfWeek) Weekday() (time.Weekday, bool) {
	wd, ok := weekdays[d]
	return wd, ok
}

// ScheduleTemplate is a client-scoped reusable weekly pattern. It is not
// itself bookable; applying it materializes concrete appointments. At most
// one template per client is active at a time.
type ScheduleTemplate struct {
	ID          uuid.UUID `db:"id" json:"id"`
	AgencyID    uuid.UUID `db:"agency_id" json:"agency_id"`
	ClientID    uuid.UUID `db:"client_id" json:"client_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	Visits []*Visit `json:"visits"`
}

// Visit is one day-of-week + time-window + worker assignment within a
// template. Visits exist only nested under their template and are wholly
// replaced on every template update.
type Visit struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	TemplateID     uuid.UUID  `db:"template_id" json:"template_id"`
	DayOfWeek      DayOfWeek  `db:"day_of_week" json:"day_of_week"`
	StartTime      string     `db:"start_time" json:"start_time"`
	EndTime        string     `db:"end_time" json:"end_time"`
	WorkerID       uuid.UUID  `db:"worker_id" json:"worker_id"`
	SecondWorkerID *uuid.UUID `db:"second_worker_id" json:"second_worker_id,omitempty"`
	ThirdWorkerID  *uuid.UUID `db:"third_worker_id" json:"third_worker_id,omitempty"`
	RateSheetID    *uuid.UUID `db:"rate_sheet_id" json:"rate_sheet_id,omitempty"`
	VisitTypeID    *uuid.UUID `db:"visit_type_id" json:"visit_type_id,omitempty"`
}
