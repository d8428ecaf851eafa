package template

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careops/careops/internal/domain/scheduling"
	"github.com/careops/careops/internal/timeutil"
)

// Materializer expands a template's visit definitions into concrete
// appointments, each anchored at the next occurrence of the visit's weekday
// on or after today.
//
// Materialized appointments skip per-item overlap validation on purpose:
// templates are vetted by the agency up front, and that relaxation is scoped
// to template application only. The single-appointment path stays strict.
type Materializer struct {
	templates    Repository
	appointments scheduling.AppointmentRepository
	now          func() time.Time
	logger       zerolog.Logger
}

func NewMaterializer(templates Repository, appointments scheduling.AppointmentRepository, logger zerolog.Logger) *Materializer {
	return &Materializer{
		templates:    templates,
		appointments: appointments,
		now:          time.Now,
		logger:       logger,
	}
}

// WithClock overrides the time source. Used by tests to pin "today".
func (m *Materializer) WithClock(now func() time.Time) *Materializer {
	m.now = now
	return m
}

// Apply materializes the template's visits into appointments and
// bulk-inserts them as one batch, returning the inserted count. Visits
// missing a day, time window, or worker are logged and skipped; if every
// visit is skipped the batch fails with ErrNoValidVisits and nothing is
// written.
func (m *Materializer) Apply(ctx context.Context, templateID uuid.UUID) (int, error) {
	t, err := m.templates.GetByID(ctx, templateID)
	if err != nil {
		return 0, err
	}

	today := m.now()
	var drafts []*scheduling.Appointment
	for _, v := range t.Visits {
		weekday, start, end, ok := m.validVisit(t.ID, v)
		if !ok {
			continue
		}
		date := timeutil.NextOccurrence(weekday, today)
		zeroRate := 0.0
		drafts = append(drafts, &scheduling.Appointment{
			AgencyID:    t.AgencyID,
			ClientID:    t.ClientID,
			WorkerID:    v.WorkerID,
			Date:        date,
			StartTime:   start.String(),
			EndTime:     end.String(),
			Status:      scheduling.StatusPending,
			Category:    scheduling.CategoryHomeVisit,
			ChargeRate:  &zeroRate,
			RateSheetID: v.RateSheetID,
		})
	}

	if len(drafts) == 0 {
		return 0, ErrNoValidVisits
	}
	return m.appointments.BulkCreate(ctx, drafts)
}

// validVisit checks that a visit has everything materialization needs.
// Invalid visits are logged and skipped rather than failing the batch.
func (m *Materializer) validVisit(templateID uuid.UUID, v *Visit) (time.Weekday, timeutil.TimeOfDay, timeutil.TimeOfDay, bool) {
	var zero timeutil.TimeOfDay
	skip := func(reason string) (time.Weekday, timeutil.TimeOfDay, timeutil.TimeOfDay, bool) {
		m.logger.Warn().
			Str("template_id", templateID.String()).
			Str("visit_id", v.ID.String()).
			Str("reason", reason).
			Msg("skipping invalid template visit")
		return 0, zero, zero, false
	}

	weekday, ok := v.DayOfWeek.Weekday()
	if !ok {
		return skip("missing or unknown day of week")
	}
	if v.WorkerID == uuid.Nil {
		return skip("missing worker")
	}
	start, err := timeutil.ParseTimeOfDay(v.StartTime)
	if err != nil {
		return skip("missing or invalid start time")
	}
	end, err := timeutil.ParseTimeOfDay(v.EndTime)
	if err != nil {
		return skip("missing or invalid end time")
	}
	if end.Hour*60+end.Minute <= start.Hour*60+start.Minute {
		return skip("end time not after start time")
	}
	return weekday, start, end, true
}
