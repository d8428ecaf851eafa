package template

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const tmplCols = `id, agency_id, client_id, name, description, is_active, created_at, updated_at`

const visitCols = `id, template_id, day_of_week, start_time, end_time,
	worker_id, second_worker_id, third_worker_id, rate_sheet_id, visit_type_id`

func scanTemplate(row pgx.Row) (*ScheduleTemplate, error) {
	var t ScheduleTemplate
	err := row.Scan(&t.ID, &t.AgencyID, &t.ClientID, &t.Name, &t.Description,
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	return &t, err
}

// deactivateSiblings clears is_active on the client's other templates. It
// must run in the same transaction as any write that sets is_active, before
// that write: the partial unique index on (client_id) WHERE is_active is
// checked per statement, so activating first would abort the transaction.
func deactivateSiblings(ctx context.Context, tx pgx.Tx, clientID, exceptID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE schedule_template SET is_active=false, updated_at=NOW()
		WHERE client_id = $1 AND is_active AND id <> $2`, clientID, exceptID)
	return err
}

func (r *repoPG) Create(ctx context.Context, t *ScheduleTemplate) error {
	t.ID = uuid.New()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin template create: %w", err)
	}
	defer tx.Rollback(ctx)

	if t.IsActive {
		if err := deactivateSiblings(ctx, tx, t.ClientID, t.ID); err != nil {
			return err
		}
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO schedule_template (id, agency_id, client_id, name, description, is_active)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		t.ID, t.AgencyID, t.ClientID, t.Name, t.Description, t.IsActive)
	if err != nil {
		return err
	}
	if err := insertVisits(ctx, tx, t.ID, t.Visits); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*ScheduleTemplate, error) {
	t, err := scanTemplate(r.pool.QueryRow(ctx, `SELECT `+tmplCols+` FROM schedule_template WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+visitCols+` FROM template_visit
		WHERE template_id = $1
		ORDER BY day_of_week ASC, start_time ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var v Visit
		if err := rows.Scan(&v.ID, &v.TemplateID, &v.DayOfWeek, &v.StartTime, &v.EndTime,
			&v.WorkerID, &v.SecondWorkerID, &v.ThirdWorkerID, &v.RateSheetID, &v.VisitTypeID); err != nil {
			return nil, err
		}
		t.Visits = append(t.Visits, &v)
	}
	return t, rows.Err()
}

func (r *repoPG) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*ScheduleTemplate, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM schedule_template WHERE client_id = $1`, clientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+tmplCols+` FROM schedule_template
		WHERE client_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, clientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*ScheduleTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, t *ScheduleTemplate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin template update: %w", err)
	}
	defer tx.Rollback(ctx)

	if t.IsActive {
		if err := deactivateSiblings(ctx, tx, t.ClientID, t.ID); err != nil {
			return err
		}
	}
	tag, err := tx.Exec(ctx, `
		UPDATE schedule_template SET name=$2, description=$3, is_active=$4, updated_at=NOW()
		WHERE id = $1`,
		t.ID, t.Name, t.Description, t.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM template_visit WHERE template_id = $1`, t.ID); err != nil {
		return err
	}
	if err := insertVisits(ctx, tx, t.ID, t.Visits); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM schedule_template WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Activate(ctx context.Context, id, clientID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin template activate: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE schedule_template SET is_active=false, updated_at=NOW()
		WHERE client_id = $1 AND is_active`, clientID); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
		UPDATE schedule_template SET is_active=true, updated_at=NOW()
		WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

func (r *repoPG) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE schedule_template SET is_active=false, updated_at=NOW()
		WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func insertVisits(ctx context.Context, tx pgx.Tx, templateID uuid.UUID, visits []*Visit) error {
	for _, v := range visits {
		v.ID = uuid.New()
		v.TemplateID = templateID
		_, err := tx.Exec(ctx, `
			INSERT INTO template_visit (id, template_id, day_of_week, start_time, end_time,
				worker_id, second_worker_id, third_worker_id, rate_sheet_id, visit_type_id)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			v.ID, v.TemplateID, v.DayOfWeek, v.StartTime, v.EndTime,
			v.WorkerID, v.SecondWorkerID, v.ThirdWorkerID, v.RateSheetID, v.VisitTypeID)
		if err != nil {
			return err
		}
	}
	return nil
}
