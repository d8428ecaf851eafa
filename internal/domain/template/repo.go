package template

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the authoritative store of schedule templates and their
// nested visits.
type Repository interface {
	// Create persists the template with its visits. When t.IsActive, the
	// client's other templates are deactivated in the same transaction;
	// the at-most-one-active invariant must hold at every statement, not
	// just at commit.
	Create(ctx context.Context, t *ScheduleTemplate) error
	// GetByID loads the template with its visits, returning ErrNotFound
	// when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*ScheduleTemplate, error)
	ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*ScheduleTemplate, int, error)
	// Update persists the template row and replaces the entire visit set
	// (delete-then-insert) in a single transaction, so a failure partway
	// cannot leave a mixed old/new set. Sibling deactivation follows the
	// same rule as Create.
	Update(ctx context.Context, t *ScheduleTemplate) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Activate deactivates every template owned by clientID and activates
	// id, both in one transaction, so at most one template per client is
	// ever observed active.
	Activate(ctx context.Context, id, clientID uuid.UUID) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}
