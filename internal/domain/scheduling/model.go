package scheduling

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careops/careops/internal/timeutil"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// allowedTransitions encodes the status state machine:
// PENDING -> CONFIRMED -> COMPLETED, with CANCELLED reachable from PENDING
// or CONFIRMED. COMPLETED and CANCELLED are terminal.
var allowedTransitions = map[Status]map[Status]bool{
	StatusPending:   {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed: {StatusCompleted: true, StatusCancelled: true},
}

// IsValidStatus reports whether s is one of the four known statuses.
func IsValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an appointment may move from one status to
// another. Re-asserting the current status is always allowed.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	return allowedTransitions[from][to]
}

// Category classifies an appointment.
type Category string

const (
	CategoryAppointment   Category = "APPOINTMENT"
	CategoryWeeklyCheckup Category = "WEEKLY_CHECKUP"
	CategoryHomeVisit     Category = "HOME_VISIT"
	CategoryOther         Category = "OTHER"
)

// categoryAliases maps legacy external vocabulary onto the internal enum.
var categoryAliases = map[string]Category{
	"CHECKUP":   CategoryWeeklyCheckup,
	"EMERGENCY": CategoryAppointment,
	"ROUTINE":   CategoryAppointment,
}

// NormalizeCategory maps an external category string onto the internal enum.
// The boolean reports whether the input was recognized; unrecognized input
// yields CategoryAppointment so callers can still default while being able
// to tell the difference.
func NormalizeCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryAppointment, CategoryWeeklyCheckup, CategoryHomeVisit, CategoryOther:
		return Category(s), true
	}
	if c, ok := categoryAliases[s]; ok {
		return c, true
	}
	return CategoryAppointment, false
}

// categoryColors is the fixed display palette keyed by category. Colors are
// derived on every read, never persisted.
var categoryColors = map[Category]string{
	CategoryAppointment:   "#3B82F6",
	CategoryWeeklyCheckup: "#10B981",
	CategoryHomeVisit:     "#8B5CF6",
	CategoryOther:         "#6B7280",
}

// DisplayColor returns the palette color for a category. Unknown categories
// fall back to the APPOINTMENT color.
func DisplayColor(c Category) string {
	if color, ok := categoryColors[c]; ok {
		return color
	}
	return categoryColors[CategoryAppointment]
}

// DisplayTitle composes the human-readable appointment title from the client
// and worker display names. Either name may be empty.
func DisplayTitle(clientName, workerName string) string {
	if clientName == "" || workerName == "" {
		return clientName + workerName
	}
	return fmt.Sprintf("%s with %s", clientName, workerName)
}

// Appointment maps to the appointment table: one worker booked for one
// client on one calendar date. Start and end times are agency-local
// zero-padded "HH:mm" strings; the [start, end) window is half-open, so an
// appointment ending at 10:00 does not conflict with one starting at 10:00.
type Appointment struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	AgencyID    uuid.UUID  `db:"agency_id" json:"agency_id"`
	ClientID    uuid.UUID  `db:"client_id" json:"client_id"`
	WorkerID    uuid.UUID  `db:"worker_id" json:"worker_id"`
	Date        time.Time  `db:"visit_date" json:"date"`
	StartTime   string     `db:"start_time" json:"start_time"`
	EndTime     string     `db:"end_time" json:"end_time"`
	Status      Status     `db:"status" json:"status"`
	Category    Category   `db:"category" json:"category"`
	Notes       *string    `db:"notes" json:"notes,omitempty"`
	ChargeRate  *float64   `db:"charge_rate" json:"charge_rate,omitempty"`
	RateSheetID *uuid.UUID `db:"rate_sheet_id" json:"rate_sheet_id,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Window returns the appointment's time window anchored on its date. Both
// time fields must already be valid "HH:mm" strings.
func (a *Appointment) Window() (start, end time.Time) {
	s, _ := timeutil.ParseTimeOfDay(a.StartTime)
	e, _ := timeutil.ParseTimeOfDay(a.EndTime)
	return timeutil.Combine(a.Date, s), timeutil.Combine(a.Date, e)
}

// Overlaps reports whether the appointment's window intersects [start, end)
// under half-open semantics.
func (a *Appointment) Overlaps(start, end time.Time) bool {
	aStart, aEnd := a.Window()
	return aStart.Before(end) && aEnd.After(start)
}
