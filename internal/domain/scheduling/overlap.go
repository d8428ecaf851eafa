package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/careops/careops/internal/timeutil"
)

// OverlapChecker answers whether a candidate time window collides with an
// existing appointment for the same worker and date. It reads through to the
// repository on every call; stale data here would break the no-double-booking
// invariant.
type OverlapChecker struct {
	appointments AppointmentRepository
}

func NewOverlapChecker(appointments AppointmentRepository) *OverlapChecker {
	return &OverlapChecker{appointments: appointments}
}

// FindConflict returns the first appointment for workerID on date whose
// [start, end) window intersects the candidate window, or nil when the slot
// is free. excludeID removes one appointment from consideration so an update
// does not conflict with itself; pass uuid.Nil to exclude nothing.
// Start and end must be valid "HH:mm" strings with end after start.
func (c *OverlapChecker) FindConflict(ctx context.Context, workerID uuid.UUID, date time.Time, startTime, endTime string, excludeID uuid.UUID) (*Appointment, error) {
	start, err := timeutil.CombineString(date, startTime)
	if err != nil {
		return nil, err
	}
	end, err := timeutil.CombineString(date, endTime)
	if err != nil {
		return nil, err
	}

	existing, err := c.appointments.ListForWorkerDay(ctx, workerID, date, excludeID)
	if err != nil {
		return nil, err
	}
	for _, appt := range existing {
		if appt.Overlaps(start, end) {
			return appt, nil
		}
	}
	return nil, nil
}
