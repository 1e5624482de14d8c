package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tanvir-ahmed/hirecal/libs/db"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/model"
)

type TimeOffRepository struct {
	pool *db.Pool
}

func NewTimeOffRepository(pool *db.Pool) *TimeOffRepository {
	return &TimeOffRepository{pool: pool}
}

const timeOffColumns = `
	id::text, recruiter_id, start_date, end_date, type, reason,
	is_approved, COALESCE(approved_by, ''), cancelled_at, created_at`

func scanTimeOff(row pgx.Row) (model.TimeOff, error) {
	var t model.TimeOff
	var cancelledAt *time.Time
	err := row.Scan(
		&t.ID,
		&t.RecruiterID,
		&t.StartDate,
		&t.EndDate,
		&t.Type,
		&t.Reason,
		&t.IsApproved,
		&t.ApprovedBy,
		&cancelledAt,
		&t.CreatedAt,
	)
	if err != nil {
		return model.TimeOff{}, err
	}
	t.CancelledAt = cancelledAt
	return t, nil
}

// Create inserts a pending (unapproved) time-off request.
func (r *TimeOffRepository) Create(ctx context.Context, t model.TimeOff) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO recruiter_time_off (id, recruiter_id, start_date, end_date, type, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, t.RecruiterID, t.StartDate, t.EndDate, t.Type, t.Reason)
	if err != nil {
		return "", err
	}
	return id, nil
}

type TimeOffFilter struct {
	ApprovedOnly bool
	PendingOnly  bool
}

func (r *TimeOffRepository) List(ctx context.Context, recruiterID string, filter TimeOffFilter) ([]model.TimeOff, error) {
	q := `
		SELECT` + timeOffColumns + `
		FROM recruiter_time_off
		WHERE recruiter_id = $1 AND cancelled_at IS NULL`
	if filter.ApprovedOnly {
		q += ` AND is_approved`
	}
	if filter.PendingOnly {
		q += ` AND NOT is_approved`
	}
	q += ` ORDER BY start_date ASC`

	rows, err := r.pool.Query(ctx, q, recruiterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TimeOff
	for rows.Next() {
		t, err := scanTimeOff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// ApprovedForDay returns the approved, non-cancelled entries covering one
// date (midnight UTC). Used by the availability resolver.
func (r *TimeOffRepository) ApprovedForDay(ctx context.Context, recruiterID string, day time.Time) ([]model.TimeOff, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+timeOffColumns+`
		FROM recruiter_time_off
		WHERE recruiter_id = $1
			AND is_approved
			AND cancelled_at IS NULL
			AND start_date <= $2
			AND end_date >= $2
	`, recruiterID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TimeOff
	for rows.Next() {
		t, err := scanTimeOff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// Approve marks a pending request approved by the given admin.
func (r *TimeOffRepository) Approve(ctx context.Context, id, adminID string) (model.TimeOff, error) {
	return scanTimeOff(r.pool.QueryRow(ctx, `
		UPDATE recruiter_time_off
		SET is_approved = true,
			approved_by = $2
		WHERE id = $1 AND cancelled_at IS NULL
		RETURNING`+timeOffColumns+`
	`, id, adminID))
}

// Cancel soft-cancels an entry; the row stays for history.
func (r *TimeOffRepository) Cancel(ctx context.Context, id string) (model.TimeOff, error) {
	return scanTimeOff(r.pool.QueryRow(ctx, `
		UPDATE recruiter_time_off
		SET cancelled_at = now()
		WHERE id = $1 AND cancelled_at IS NULL
		RETURNING`+timeOffColumns+`
	`, id))
}

// Get loads one entry by ID.
func (r *TimeOffRepository) Get(ctx context.Context, id string) (model.TimeOff, error) {
	return scanTimeOff(r.pool.QueryRow(ctx, `
		SELECT`+timeOffColumns+`
		FROM recruiter_time_off
		WHERE id = $1
	`, id))
}
