package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter narrows an appointment listing. Nil fields are ignored; the date
// range is inclusive on both ends.
type Filter struct {
	AgencyID uuid.UUID
	ClientID *uuid.UUID
	WorkerID *uuid.UUID
	Status   *Status
	Category *Category
	DateFrom *time.Time
	DateTo   *time.Time
}

// AppointmentRepository is the authoritative store of concrete appointments.
// Implementations must not cache rows: overlap validation reads through to
// storage on every call.
type AppointmentRepository interface {
	// Create persists a new appointment. Implementations backed by shared
	// storage must serialize creates per (worker, date) and return a
	// *ConflictError if the window collides with a concurrent insert.
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// Update persists all columns of a. Returns ErrNotFound if the id is
	// gone. When checkConflict is set, the write is serialized per
	// (worker, date) and fails with *ConflictError under the same rules
	// as Create. Callers pass false when the worker, date, and time
	// window are unchanged: rows that already overlap, such as
	// template-materialized appointments, must stay updatable.
	Update(ctx context.Context, a *Appointment, checkConflict bool) error
	// Delete removes the appointment, returning ErrNotFound when absent.
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error)
	// ListForWorkerDay returns every appointment for the worker on the given
	// date, optionally excluding one id (uuid.Nil excludes nothing).
	ListForWorkerDay(ctx context.Context, workerID uuid.UUID, date time.Time, excludeID uuid.UUID) ([]*Appointment, error)
	// BulkCreate inserts the batch atomically and returns the inserted
	// count. Overlap checks are deliberately not applied here; template
	// materialization relies on that.
	BulkCreate(ctx context.Context, appts []*Appointment) (int, error)
}
