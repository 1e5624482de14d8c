package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tanvir-ahmed/hirecal/libs/db"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/model"
)

type RescheduleRepository struct {
	pool *db.Pool
}

func NewRescheduleRepository(pool *db.Pool) *RescheduleRepository {
	return &RescheduleRepository{pool: pool}
}

const rescheduleColumns = `
	id::text, interview_id::text, requested_by, new_date, reason,
	COALESCE(response_notes, ''), status, created_at, responded_at`

func scanReschedule(row pgx.Row) (model.RescheduleRequest, error) {
	var rr model.RescheduleRequest
	var respondedAt *time.Time
	err := row.Scan(
		&rr.ID,
		&rr.InterviewID,
		&rr.RequestedBy,
		&rr.NewDate,
		&rr.Reason,
		&rr.ResponseNotes,
		&rr.Status,
		&rr.CreatedAt,
		&respondedAt,
	)
	if err != nil {
		return model.RescheduleRequest{}, err
	}
	rr.RespondedAt = respondedAt
	return rr, nil
}

// Create stages a PENDING consent request inside the caller's transaction.
func (r *RescheduleRepository) Create(ctx context.Context, tx pgx.Tx, rr model.RescheduleRequest) (string, error) {
	id := uuid.NewString()
	_, err := tx.Exec(ctx, `
		INSERT INTO reschedule_requests (id, interview_id, requested_by, new_date, reason)
		VALUES ($1, $2, $3, $4, $5)
	`, id, rr.InterviewID, rr.RequestedBy, rr.NewDate, rr.Reason)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *RescheduleRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (model.RescheduleRequest, error) {
	return scanReschedule(tx.QueryRow(ctx, `
		SELECT`+rescheduleColumns+`
		FROM reschedule_requests
		WHERE id = $1
		FOR UPDATE
	`, id))
}

func (r *RescheduleRepository) ListForInterview(ctx context.Context, interviewID string) ([]model.RescheduleRequest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+rescheduleColumns+`
		FROM reschedule_requests
		WHERE interview_id = $1
		ORDER BY created_at DESC
	`, interviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RescheduleRequest
	for rows.Next() {
		rr, err := scanReschedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// Respond finalizes a pending request as APPROVED or DECLINED.
func (r *RescheduleRepository) Respond(ctx context.Context, tx pgx.Tx, id string, status model.RescheduleStatus, notes string) error {
	_, err := tx.Exec(ctx, `
		UPDATE reschedule_requests
		SET status = $2,
			response_notes = $3,
			responded_at = now()
		WHERE id = $1
	`, id, status, notes)
	return err
}

// InvalidatePending marks all pending requests for an interview INVALIDATED.
// Called when the interview reaches a terminal state, so stale consent
// requests cannot be approved afterwards.
func (r *RescheduleRepository) InvalidatePending(ctx context.Context, tx pgx.Tx, interviewID string) error {
	_, err := tx.Exec(ctx, `
		UPDATE reschedule_requests
		SET status = 'INVALIDATED',
			responded_at = now()
		WHERE interview_id = $1 AND status = 'PENDING'
	`, interviewID)
	return err
}
