package scheduling

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an appointment id does not exist. A delete of
// an already-deleted id reports this too, so repeated deletes are observable.
var ErrNotFound = errors.New("appointment not found")

// ValidationError reports malformed or missing input. It is always detected
// before any write.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ConflictError reports that a candidate time window overlaps an existing
// appointment for the same worker and date.
type ConflictError struct {
	Existing *Appointment
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("time slot unavailable: overlaps appointment %s (%s-%s)",
		e.Existing.ID, e.Existing.StartTime, e.Existing.EndTime)
}
