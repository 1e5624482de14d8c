package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// IdempotencyRecord replays a previous schedule outcome for a retried
// request.
type IdempotencyRecord struct {
	RecruiterID     string
	IdempotencyKey  string
	InterviewID     string
	StatusCode      int
	ResponsePayload []byte
}

// Replayable reports whether the record already carries a finalized outcome.
// A freshly claimed key has no status yet and must be decided, not replayed.
func (rec IdempotencyRecord) Replayable() bool {
	return rec.StatusCode != 0
}

// LockIdempotencyKey claims the (recruiter, key) pair inside the transaction.
// The second return is true when a prior attempt already recorded an outcome.
// A concurrent duplicate blocks on the insert until the first transaction
// commits, so replay is decided from the re-selected row, not from whether the
// initial select found one.
func (r *InterviewRepository) LockIdempotencyKey(ctx context.Context, tx pgx.Tx, recruiterID, key string) (IdempotencyRecord, bool, error) {
	rec, err := r.selectIdempotencyForUpdate(ctx, tx, recruiterID, key)
	if err == nil {
		return rec, rec.Replayable(), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return IdempotencyRecord{}, false, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO schedule_idempotency_keys (recruiter_id, idempotency_key)
		VALUES ($1, $2)
		ON CONFLICT (recruiter_id, idempotency_key) DO NOTHING
	`, recruiterID, key)
	if err != nil {
		return IdempotencyRecord{}, false, err
	}

	rec, err = r.selectIdempotencyForUpdate(ctx, tx, recruiterID, key)
	if err != nil {
		return IdempotencyRecord{}, false, err
	}
	return rec, rec.Replayable(), nil
}

func (r *InterviewRepository) FinalizeIdempotency(ctx context.Context, tx pgx.Tx, recruiterID, key, interviewID string, statusCode int, response []byte) error {
	_, err := tx.Exec(ctx, `
		UPDATE schedule_idempotency_keys
		SET interview_id = NULLIF($3, '')::uuid,
			status_code = $4,
			response_payload = $5,
			updated_at = now()
		WHERE recruiter_id = $1 AND idempotency_key = $2
	`, recruiterID, key, interviewID, statusCode, response)
	return err
}

func (r *InterviewRepository) selectIdempotencyForUpdate(ctx context.Context, tx pgx.Tx, recruiterID, key string) (IdempotencyRecord, error) {
	var rec IdempotencyRecord
	var responseText string
	err := tx.QueryRow(ctx, `
		SELECT recruiter_id,
			idempotency_key,
			COALESCE(interview_id::text, ''),
			COALESCE(status_code, 0),
			COALESCE(response_payload::text, '')
		FROM schedule_idempotency_keys
		WHERE recruiter_id = $1 AND idempotency_key = $2
		FOR UPDATE
	`, recruiterID, key).Scan(
		&rec.RecruiterID,
		&rec.IdempotencyKey,
		&rec.InterviewID,
		&rec.StatusCode,
		&responseText,
	)
	if err != nil {
		return IdempotencyRecord{}, err
	}
	if responseText != "" {
		rec.ResponsePayload = []byte(responseText)
	}
	return rec, nil
}
