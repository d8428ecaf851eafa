package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

const apptCols = `id, agency_id, client_id, worker_id, visit_date, start_time, end_time,
	status, category, notes, charge_rate, rate_sheet_id, created_at, updated_at`

func scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.AgencyID, &a.ClientID, &a.WorkerID, &a.Date, &a.StartTime, &a.EndTime,
		&a.Status, &a.Category, &a.Notes, &a.ChargeRate, &a.RateSheetID, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

// lockWorkerDay serializes writers touching the same (worker, date) pair for
// the duration of the transaction. Row locks alone cannot close the
// read-then-insert race when the worker's day is still empty, so an advisory
// transaction lock keyed on the pair is taken instead.
func lockWorkerDay(ctx context.Context, tx pgx.Tx, workerID uuid.UUID, date time.Time) error {
	_, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1 || '/' || $2, 0))`,
		workerID.String(), date.Format("2006-01-02"))
	return err
}

// findConflictTx re-checks overlap inside the transaction, after the
// advisory lock is held. Times are zero-padded "HH:mm", so lexicographic
// comparison matches chronological order.
func findConflictTx(ctx context.Context, tx pgx.Tx, a *Appointment) (*Appointment, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE worker_id = $1 AND visit_date = $2
			AND start_time < $3 AND end_time > $4
			AND id <> $5
		ORDER BY start_time ASC
		LIMIT 1`,
		a.WorkerID, a.Date, a.EndTime, a.StartTime, a.ID)
	existing, err := scanAppt(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return existing, nil
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockWorkerDay(ctx, tx, a.WorkerID, a.Date); err != nil {
		return fmt.Errorf("lock worker day: %w", err)
	}
	if conflict, err := findConflictTx(ctx, tx, a); err != nil {
		return err
	} else if conflict != nil {
		return &ConflictError{Existing: conflict}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO appointment (id, agency_id, client_id, worker_id, visit_date,
			start_time, end_time, status, category, notes, charge_rate, rate_sheet_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		a.ID, a.AgencyID, a.ClientID, a.WorkerID, a.Date,
		a.StartTime, a.EndTime, a.Status, a.Category, a.Notes, a.ChargeRate, a.RateSheetID)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := scanAppt(r.pool.QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *appointmentRepoPG) Update(ctx context.Context, a *Appointment, checkConflict bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback(ctx)

	// Only a changed worker/date/window needs serialization and the
	// overlap re-check. Re-checking unconditionally would reject any
	// update to an appointment that already overlaps a sibling, which
	// materialized appointments are allowed to do.
	if checkConflict {
		if err := lockWorkerDay(ctx, tx, a.WorkerID, a.Date); err != nil {
			return fmt.Errorf("lock worker day: %w", err)
		}
		if conflict, err := findConflictTx(ctx, tx, a); err != nil {
			return err
		} else if conflict != nil {
			return &ConflictError{Existing: conflict}
		}
	}

	tag, err := tx.Exec(ctx, `
		UPDATE appointment SET client_id=$2, worker_id=$3, visit_date=$4,
			start_time=$5, end_time=$6, status=$7, category=$8, notes=$9,
			charge_rate=$10, rate_sheet_id=$11, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.ClientID, a.WorkerID, a.Date,
		a.StartTime, a.EndTime, a.Status, a.Category, a.Notes,
		a.ChargeRate, a.RateSheetID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

func (r *appointmentRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointment WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *appointmentRepoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	query := `SELECT ` + apptCols + ` FROM appointment WHERE agency_id = $1`
	countQuery := `SELECT COUNT(*) FROM appointment WHERE agency_id = $1`
	args := []interface{}{f.AgencyID}
	idx := 2

	addClause := func(clause string, arg interface{}) {
		cond := fmt.Sprintf(clause, idx)
		query += cond
		countQuery += cond
		args = append(args, arg)
		idx++
	}

	if f.ClientID != nil {
		addClause(` AND client_id = $%d`, *f.ClientID)
	}
	if f.WorkerID != nil {
		addClause(` AND worker_id = $%d`, *f.WorkerID)
	}
	if f.Status != nil {
		addClause(` AND status = $%d`, *f.Status)
	}
	if f.Category != nil {
		addClause(` AND category = $%d`, *f.Category)
	}
	if f.DateFrom != nil {
		addClause(` AND visit_date >= $%d`, *f.DateFrom)
	}
	if f.DateTo != nil {
		addClause(` AND visit_date <= $%d`, *f.DateTo)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY visit_date ASC, start_time ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppt(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *appointmentRepoPG) ListForWorkerDay(ctx context.Context, workerID uuid.UUID, date time.Time, excludeID uuid.UUID) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE worker_id = $1 AND visit_date = $2 AND id <> $3
		ORDER BY start_time ASC`,
		workerID, date, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppt(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *appointmentRepoPG) BulkCreate(ctx context.Context, appts []*Appointment) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin bulk create: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, a := range appts {
		a.ID = uuid.New()
		batch.Queue(`
			INSERT INTO appointment (id, agency_id, client_id, worker_id, visit_date,
				start_time, end_time, status, category, notes, charge_rate, rate_sheet_id)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			a.ID, a.AgencyID, a.ClientID, a.WorkerID, a.Date,
			a.StartTime, a.EndTime, a.Status, a.Category, a.Notes, a.ChargeRate, a.RateSheetID)
	}

	br := tx.SendBatch(ctx, batch)
	for range appts {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return 0, err
		}
	}
	if err := br.Close(); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return len(appts), nil
}
