package template

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careops/careops/internal/domain/scheduling"
)

// Service manages schedule templates and their visit sets.
type Service struct {
	templates Repository
	logger    zerolog.Logger
}

func NewService(templates Repository, logger zerolog.Logger) *Service {
	return &Service{templates: templates, logger: logger}
}

// VisitInput is one visit definition supplied by the caller. VisitTypeRef
// may be either a generated client-visit-type id or a legacy enum string;
// only the former is attached to the stored visit.
type VisitInput struct {
	DayOfWeek      DayOfWeek  `json:"day_of_week"`
	StartTime      string     `json:"start_time"`
	EndTime        string     `json:"end_time"`
	WorkerID       uuid.UUID  `json:"worker_id"`
	SecondWorkerID *uuid.UUID `json:"second_worker_id,omitempty"`
	ThirdWorkerID  *uuid.UUID `json:"third_worker_id,omitempty"`
	RateSheetID    *uuid.UUID `json:"rate_sheet_id,omitempty"`
	VisitTypeRef   string     `json:"visit_type_ref,omitempty"`
}

func (in VisitInput) toVisit() *Visit {
	v := &Visit{
		DayOfWeek:      in.DayOfWeek,
		StartTime:      in.StartTime,
		EndTime:        in.EndTime,
		WorkerID:       in.WorkerID,
		SecondWorkerID: in.SecondWorkerID,
		ThirdWorkerID:  in.ThirdWorkerID,
		RateSheetID:    in.RateSheetID,
	}
	// Legacy callers send plain enum strings in the visit-type field; only
	// a generated identifier is worth a reference.
	if id, err := uuid.Parse(in.VisitTypeRef); err == nil {
		v.VisitTypeID = &id
	}
	return v
}

// CreateInput carries the fields for a new template.
type CreateInput struct {
	AgencyID    uuid.UUID    `json:"agency_id"`
	ClientID    uuid.UUID    `json:"client_id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	IsActive    bool         `json:"is_active"`
	Visits      []VisitInput `json:"visits"`
}

// UpdateInput replaces a template's fields and its entire visit set.
type UpdateInput struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	IsActive    bool         `json:"is_active"`
	Visits      []VisitInput `json:"visits"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*ScheduleTemplate, error) {
	if in.AgencyID == uuid.Nil {
		return nil, &scheduling.ValidationError{Reason: "agency_id is required"}
	}
	if in.ClientID == uuid.Nil {
		return nil, &scheduling.ValidationError{Reason: "client_id is required"}
	}
	if in.Name == "" {
		return nil, &scheduling.ValidationError{Reason: "name is required"}
	}

	t := &ScheduleTemplate{
		AgencyID:    in.AgencyID,
		ClientID:    in.ClientID,
		Name:        in.Name,
		Description: in.Description,
		IsActive:    in.IsActive,
	}
	for _, v := range in.Visits {
		t.Visits = append(t.Visits, v.toVisit())
	}
	// A template created active displaces the client's previous one; the
	// repository handles that inside the insert transaction.
	if err := s.templates.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ScheduleTemplate, error) {
	return s.templates.GetByID(ctx, id)
}

func (s *Service) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*ScheduleTemplate, int, error) {
	return s.templates.ListByClient(ctx, clientID, limit, offset)
}

// Update replaces the template's fields and its whole visit set.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*ScheduleTemplate, error) {
	if in.Name == "" {
		return nil, &scheduling.ValidationError{Reason: "name is required"}
	}
	t, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	t.Name = in.Name
	t.Description = in.Description
	t.IsActive = in.IsActive
	t.Visits = nil
	for _, v := range in.Visits {
		t.Visits = append(t.Visits, v.toVisit())
	}
	if err := s.templates.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.templates.Delete(ctx, id)
}

// Activate makes the template the single active one for its client.
func (s *Service) Activate(ctx context.Context, id uuid.UUID) error {
	t, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.templates.Activate(ctx, t.ID, t.ClientID)
}

func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.templates.Deactivate(ctx, id)
}
