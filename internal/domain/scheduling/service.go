package scheduling

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/careops/careops/internal/timeutil"
)

// NameResolver looks up display names for clients and workers. Identity
// storage lives outside this service; a nil resolver just leaves titles
// empty.
type NameResolver interface {
	ClientName(ctx context.Context, id uuid.UUID) (string, error)
	WorkerName(ctx context.Context, id uuid.UUID) (string, error)
}

// Service orchestrates validation and persistence for single appointments.
type Service struct {
	appointments AppointmentRepository
	overlap      *OverlapChecker
	names        NameResolver
	logger       zerolog.Logger
}

func NewService(appointments AppointmentRepository, names NameResolver, logger zerolog.Logger) *Service {
	return &Service{
		appointments: appointments,
		overlap:      NewOverlapChecker(appointments),
		names:        names,
		logger:       logger,
	}
}

// CreateInput carries the fields for a new appointment. Category uses the
// external vocabulary and is normalized onto the internal enum.
type CreateInput struct {
	AgencyID    uuid.UUID  `json:"agency_id"`
	ClientID    uuid.UUID  `json:"client_id"`
	WorkerID    uuid.UUID  `json:"worker_id"`
	Date        time.Time  `json:"date"`
	StartTime   string     `json:"start_time"`
	EndTime     string     `json:"end_time"`
	Status      Status     `json:"status"`
	Category    string     `json:"category"`
	Notes       *string    `json:"notes,omitempty"`
	ChargeRate  *float64   `json:"charge_rate,omitempty"`
	RateSheetID *uuid.UUID `json:"rate_sheet_id,omitempty"`
}

// UpdatePatch carries a partial appointment update. Nil fields are left
// unchanged.
type UpdatePatch struct {
	ClientID    *uuid.UUID  `json:"client_id,omitempty"`
	WorkerID    *uuid.UUID  `json:"worker_id,omitempty"`
	Date        *time.Time  `json:"date,omitempty"`
	StartTime   *string     `json:"start_time,omitempty"`
	EndTime     *string     `json:"end_time,omitempty"`
	Status      *Status     `json:"status,omitempty"`
	Category    *string     `json:"category,omitempty"`
	Notes       *string     `json:"notes,omitempty"`
	ChargeRate  *float64    `json:"charge_rate,omitempty"`
	RateSheetID *uuid.UUID  `json:"rate_sheet_id,omitempty"`
}

// Create validates the input, checks the worker's day for overlap, and
// persists a new appointment. Validation and conflict failures happen before
// any write.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Appointment, error) {
	if in.AgencyID == uuid.Nil {
		return nil, validationErrorf("agency_id is required")
	}
	if in.ClientID == uuid.Nil {
		return nil, validationErrorf("client_id is required")
	}
	if in.WorkerID == uuid.Nil {
		return nil, validationErrorf("worker_id is required")
	}
	if in.Date.IsZero() {
		return nil, validationErrorf("date is required")
	}
	start, end, err := validateWindow(in.StartTime, in.EndTime)
	if err != nil {
		return nil, err
	}
	if !IsValidStatus(in.Status) {
		return nil, validationErrorf("invalid status: %s", in.Status)
	}

	category, recognized := NormalizeCategory(in.Category)
	if !recognized {
		s.logger.Warn().
			Str("category", in.Category).
			Msg("unrecognized appointment category, defaulting to APPOINTMENT")
	}

	if conflict, err := s.overlap.FindConflict(ctx, in.WorkerID, in.Date, start.String(), end.String(), uuid.Nil); err != nil {
		return nil, err
	} else if conflict != nil {
		return nil, &ConflictError{Existing: conflict}
	}

	if in.ChargeRate != nil && *in.ChargeRate < 0 {
		return nil, validationErrorf("charge_rate must not be negative")
	}

	a := &Appointment{
		AgencyID:    in.AgencyID,
		ClientID:    in.ClientID,
		WorkerID:    in.WorkerID,
		Date:        dateOnly(in.Date),
		StartTime:   start.String(),
		EndTime:     end.String(),
		Status:      in.Status,
		Category:    category,
		Notes:       in.Notes,
		ChargeRate:  in.ChargeRate,
		RateSheetID: in.RateSheetID,
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Get fetches a single appointment by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// Update applies a partial update. Fields absent from the patch keep their
// stored values. Changing the time window, worker, or date re-runs overlap
// validation against all other appointments for the (possibly new)
// worker/date pair.
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch UpdatePatch) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	scheduleChanged := false
	if patch.ClientID != nil {
		a.ClientID = *patch.ClientID
	}
	if patch.WorkerID != nil && *patch.WorkerID != a.WorkerID {
		a.WorkerID = *patch.WorkerID
		scheduleChanged = true
	}
	if patch.Date != nil && !dateOnly(*patch.Date).Equal(a.Date) {
		a.Date = dateOnly(*patch.Date)
		scheduleChanged = true
	}
	if patch.StartTime != nil {
		a.StartTime = *patch.StartTime
		scheduleChanged = true
	}
	if patch.EndTime != nil {
		a.EndTime = *patch.EndTime
		scheduleChanged = true
	}
	if patch.Status != nil {
		if !IsValidStatus(*patch.Status) {
			return nil, validationErrorf("invalid status: %s", *patch.Status)
		}
		if !CanTransition(a.Status, *patch.Status) {
			return nil, validationErrorf("cannot transition status from %s to %s", a.Status, *patch.Status)
		}
		a.Status = *patch.Status
	}
	if patch.Category != nil {
		category, recognized := NormalizeCategory(*patch.Category)
		if !recognized {
			s.logger.Warn().
				Str("category", *patch.Category).
				Msg("unrecognized appointment category, defaulting to APPOINTMENT")
		}
		a.Category = category
	}
	if patch.Notes != nil {
		a.Notes = patch.Notes
	}
	if patch.ChargeRate != nil {
		if *patch.ChargeRate < 0 {
			return nil, validationErrorf("charge_rate must not be negative")
		}
		a.ChargeRate = patch.ChargeRate
	}
	if patch.RateSheetID != nil {
		a.RateSheetID = patch.RateSheetID
	}

	start, end, err := validateWindow(a.StartTime, a.EndTime)
	if err != nil {
		return nil, err
	}
	a.StartTime = start.String()
	a.EndTime = end.String()

	if scheduleChanged {
		if conflict, err := s.overlap.FindConflict(ctx, a.WorkerID, a.Date, a.StartTime, a.EndTime, a.ID); err != nil {
			return nil, err
		} else if conflict != nil {
			return nil, &ConflictError{Existing: conflict}
		}
	}

	if err := s.appointments.Update(ctx, a, scheduleChanged); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete removes an appointment by id. A second delete of the same id
// reports ErrNotFound, not success.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.appointments.Delete(ctx, id)
}

// List returns a page of appointments matching the filter and the total
// match count.
func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.List(ctx, f, limit, offset)
}

// View is the read shape served to callers: the stored appointment plus
// derived display fields, recomputed on every read.
type View struct {
	*Appointment
	Color string `json:"color"`
	Title string `json:"title,omitempty"`
}

// View derives the display color and title for an appointment. Name lookups
// are best-effort: a missing resolver or a lookup failure leaves the title
// empty rather than failing the read.
func (s *Service) View(ctx context.Context, a *Appointment) *View {
	v := &View{Appointment: a, Color: DisplayColor(a.Category)}
	if s.names == nil {
		return v
	}
	clientName, err := s.names.ClientName(ctx, a.ClientID)
	if err != nil {
		return v
	}
	workerName, err := s.names.WorkerName(ctx, a.WorkerID)
	if err != nil {
		return v
	}
	v.Title = DisplayTitle(clientName, workerName)
	return v
}

// Views derives display fields for a page of appointments. Each distinct
// client and worker id is resolved once, with the lookups running
// concurrently, so a list read does not pay one sequential directory call
// per row. Lookups stay best-effort like View.
func (s *Service) Views(ctx context.Context, items []*Appointment) []*View {
	views := make([]*View, len(items))
	for i, a := range items {
		views[i] = &View{Appointment: a, Color: DisplayColor(a.Category)}
	}
	if s.names == nil || len(items) == 0 {
		return views
	}

	clients := make(map[uuid.UUID]string)
	workers := make(map[uuid.UUID]string)
	for _, a := range items {
		clients[a.ClientID] = ""
		workers[a.WorkerID] = ""
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for id := range clients {
		id := id
		g.Go(func() error {
			name, err := s.names.ClientName(gctx, id)
			if err != nil {
				return nil
			}
			mu.Lock()
			clients[id] = name
			mu.Unlock()
			return nil
		})
	}
	for id := range workers {
		id := id
		g.Go(func() error {
			name, err := s.names.WorkerName(gctx, id)
			if err != nil {
				return nil
			}
			mu.Lock()
			workers[id] = name
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for i, a := range items {
		views[i].Title = DisplayTitle(clients[a.ClientID], workers[a.WorkerID])
	}
	return views
}

// validateWindow checks both time strings and that end is strictly after
// start on the same day. The parsed values are returned so callers can store
// the zero-padded form.
func validateWindow(startTime, endTime string) (start, end timeutil.TimeOfDay, err error) {
	if startTime == "" {
		return start, end, validationErrorf("start_time is required")
	}
	if endTime == "" {
		return start, end, validationErrorf("end_time is required")
	}
	start, perr := timeutil.ParseTimeOfDay(startTime)
	if perr != nil {
		return start, end, validationErrorf("invalid start_time: %v", perr)
	}
	end, perr = timeutil.ParseTimeOfDay(endTime)
	if perr != nil {
		return start, end, validationErrorf("invalid end_time: %v", perr)
	}
	if end.Hour*60+end.Minute <= start.Hour*60+start.Minute {
		return start, end, validationErrorf("end_time must be after start_time")
	}
	return start, end, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
