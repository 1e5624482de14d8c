package storage

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tanvir-ahmed/hirecal/libs/db"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/model"
)

// Querier is satisfied by both *db.Pool and pgx.Tx so read queries can run
// inside or outside the booking transaction.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type InterviewRepository struct {
	pool *db.Pool
}

func NewInterviewRepository(pool *db.Pool) *InterviewRepository {
	return &InterviewRepository{pool: pool}
}

func (r *InterviewRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *InterviewRepository) Pool() *db.Pool {
	return r.pool
}

// LockSchedulingKeys serializes check-then-insert against concurrent booking
// attempts touching the same recruiter-day or candidate-day. Keys are sorted
// before locking so two transactions taking the same set never deadlock.
// Locks are transaction-scoped and released at commit/rollback.
func (r *InterviewRepository) LockSchedulingKeys(ctx context.Context, tx pgx.Tx, keys ...string) error {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	for _, key := range sorted {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
			return err
		}
	}
	return nil
}

const interviewColumns = `
	id::text, job_apply_id, recruiter_id, candidate_id, scheduled_at, duration_minutes,
	interview_type, COALESCE(location, ''), COALESCE(meeting_link, ''),
	COALESCE(interviewer_name, ''), COALESCE(interviewer_email, ''),
	status, round, COALESCE(preparation_notes, ''), outcome, COALESCE(outcome_notes, ''),
	COALESCE(cancel_reason, ''), COALESCE(rescheduled_to::text, ''), created_at, updated_at`

func scanInterview(row pgx.Row) (model.Interview, error) {
	var iv model.Interview
	var outcome *string
	err := row.Scan(
		&iv.ID,
		&iv.JobApplyID,
		&iv.RecruiterID,
		&iv.CandidateID,
		&iv.ScheduledAt,
		&iv.DurationMinutes,
		&iv.InterviewType,
		&iv.Location,
		&iv.MeetingLink,
		&iv.InterviewerName,
		&iv.InterviewerEmail,
		&iv.Status,
		&iv.Round,
		&iv.PreparationNotes,
		&outcome,
		&iv.OutcomeNotes,
		&iv.CancelReason,
		&iv.RescheduledTo,
		&iv.CreatedAt,
		&iv.UpdatedAt,
	)
	if err != nil {
		return model.Interview{}, err
	}
	if outcome != nil {
		o := model.InterviewOutcome(*outcome)
		iv.Outcome = &o
	}
	return iv, nil
}

func collectInterviews(rows pgx.Rows) ([]model.Interview, error) {
	defer rows.Close()
	var out []model.Interview
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// Create inserts a SCHEDULED row. The exclusion constraint on
// (recruiter_id, scheduled range) over active rows backstops the conflict
// re-check; callers map 23P01 via IsConflict.
// A pre-set iv.ID is honored so a reschedule can link the retiring row to
// its replacement before the insert.
func (r *InterviewRepository) Create(ctx context.Context, tx pgx.Tx, iv *model.Interview) (string, error) {
	id := iv.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO interviews
			(id, job_apply_id, recruiter_id, candidate_id, scheduled_at, ends_at, duration_minutes,
			 interview_type, location, meeting_link, interviewer_name, interviewer_email,
			 status, round, preparation_notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, id, iv.JobApplyID, iv.RecruiterID, iv.CandidateID, iv.ScheduledAt, iv.EndsAt(), iv.DurationMinutes,
		iv.InterviewType, iv.Location, iv.MeetingLink, iv.InterviewerName, iv.InterviewerEmail,
		model.StatusScheduled, iv.Round, iv.PreparationNotes)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *InterviewRepository) Get(ctx context.Context, q Querier, id string) (model.Interview, error) {
	return scanInterview(q.QueryRow(ctx, `
		SELECT`+interviewColumns+`
		FROM interviews
		WHERE id = $1
	`, id))
}

// GetForUpdate locks the row for the duration of the transaction.
func (r *InterviewRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (model.Interview, error) {
	return scanInterview(tx.QueryRow(ctx, `
		SELECT`+interviewColumns+`
		FROM interviews
		WHERE id = $1
		FOR UPDATE
	`, id))
}

// ActiveForJobApply returns the ID of the non-terminal row for a job
// application, if one exists.
func (r *InterviewRepository) ActiveForJobApply(ctx context.Context, q Querier, jobApplyID string) (string, bool, error) {
	var id string
	err := q.QueryRow(ctx, `
		SELECT id::text
		FROM interviews
		WHERE job_apply_id = $1 AND status IN ('SCHEDULED', 'CONFIRMED')
		LIMIT 1
	`, jobApplyID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return id, true, nil
}

// LatestRoundForJobApply returns the highest round recorded for an
// application, zero when none exist.
func (r *InterviewRepository) LatestRoundForJobApply(ctx context.Context, q Querier, jobApplyID string) (int, error) {
	var round int
	err := q.QueryRow(ctx, `
		SELECT COALESCE(MAX(round), 0)
		FROM interviews
		WHERE job_apply_id = $1
	`, jobApplyID).Scan(&round)
	return round, err
}

// ListActiveByRecruiter returns the recruiter's non-terminal interviews
// intersecting [from, to), ordered by start.
func (r *InterviewRepository) ListActiveByRecruiter(ctx context.Context, q Querier, recruiterID string, from, to time.Time) ([]model.Interview, error) {
	rows, err := q.Query(ctx, `
		SELECT`+interviewColumns+`
		FROM interviews
		WHERE recruiter_id = $1
			AND status IN ('SCHEDULED', 'CONFIRMED')
			AND scheduled_at < $3
			AND ends_at > $2
		ORDER BY scheduled_at ASC
	`, recruiterID, from, to)
	if err != nil {
		return nil, err
	}
	return collectInterviews(rows)
}

// ListActiveByCandidate returns the candidate's non-terminal interviews with
// any recruiter intersecting [from, to).
func (r *InterviewRepository) ListActiveByCandidate(ctx context.Context, q Querier, candidateID string, from, to time.Time) ([]model.Interview, error) {
	rows, err := q.Query(ctx, `
		SELECT`+interviewColumns+`
		FROM interviews
		WHERE candidate_id = $1
			AND status IN ('SCHEDULED', 'CONFIRMED')
			AND scheduled_at < $3
			AND ends_at > $2
		ORDER BY scheduled_at ASC
	`, candidateID, from, to)
	if err != nil {
		return nil, err
	}
	return collectInterviews(rows)
}

// ListByRecruiterRange returns all rows (any status) intersecting [from, to),
// for calendar views and statistics.
func (r *InterviewRepository) ListByRecruiterRange(ctx context.Context, recruiterID string, from, to time.Time) ([]model.Interview, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+interviewColumns+`
		FROM interviews
		WHERE recruiter_id = $1
			AND scheduled_at < $3
			AND ends_at > $2
		ORDER BY scheduled_at ASC
	`, recruiterID, from, to)
	if err != nil {
		return nil, err
	}
	return collectInterviews(rows)
}

// CountByDay returns per-date active interview counts for the month view.
func (r *InterviewRepository) CountByDay(ctx context.Context, recruiterID string, from, to time.Time) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT to_char(scheduled_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*)
		FROM interviews
		WHERE recruiter_id = $1
			AND status IN ('SCHEDULED', 'CONFIRMED')
			AND scheduled_at >= $2
			AND scheduled_at < $3
		GROUP BY day
	`, recruiterID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var day string
		var n int
		if err := rows.Scan(&day, &n); err != nil {
			return nil, err
		}
		out[day] = n
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// AttendanceHistory returns the recruiter's COMPLETED and NO_SHOW rows since
// the given time, feeding the suggestion heuristic.
func (r *InterviewRepository) AttendanceHistory(ctx context.Context, recruiterID string, since time.Time) ([]model.Interview, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+interviewColumns+`
		FROM interviews
		WHERE recruiter_id = $1
			AND status IN ('COMPLETED', 'NO_SHOW')
			AND scheduled_at >= $2
		ORDER BY scheduled_at ASC
	`, recruiterID, since)
	if err != nil {
		return nil, err
	}
	return collectInterviews(rows)
}

func (r *InterviewRepository) Confirm(ctx context.Context, tx pgx.Tx, id string) error {
	return r.setStatus(ctx, tx, id, model.StatusConfirmed)
}

func (r *InterviewRepository) Complete(ctx context.Context, tx pgx.Tx, id string, outcome model.InterviewOutcome, notes string) error {
	_, err := tx.Exec(ctx, `
		UPDATE interviews
		SET status = 'COMPLETED',
			outcome = $2,
			outcome_notes = $3,
			updated_at = now()
		WHERE id = $1
	`, id, outcome, notes)
	return err
}

func (r *InterviewRepository) Cancel(ctx context.Context, tx pgx.Tx, id, reason string) error {
	_, err := tx.Exec(ctx, `
		UPDATE interviews
		SET status = 'CANCELLED',
			cancel_reason = $2,
			updated_at = now()
		WHERE id = $1
	`, id, reason)
	return err
}

func (r *InterviewRepository) MarkNoShow(ctx context.Context, tx pgx.Tx, id string) error {
	return r.setStatus(ctx, tx, id, model.StatusNoShow)
}

// MarkRescheduled retires the old row and records the replacement's ID.
func (r *InterviewRepository) MarkRescheduled(ctx context.Context, tx pgx.Tx, id, newID string) error {
	_, err := tx.Exec(ctx, `
		UPDATE interviews
		SET status = 'RESCHEDULED',
			rescheduled_to = $2,
			updated_at = now()
		WHERE id = $1
	`, id, newID)
	return err
}

// UpdateDetails edits the mutable non-temporal fields of an active row.
func (r *InterviewRepository) UpdateDetails(ctx context.Context, tx pgx.Tx, id string, location, meetingLink, interviewerName, interviewerEmail, preparationNotes string) error {
	_, err := tx.Exec(ctx, `
		UPDATE interviews
		SET location = $2,
			meeting_link = $3,
			interviewer_name = $4,
			interviewer_email = $5,
			preparation_notes = $6,
			updated_at = now()
		WHERE id = $1
	`, id, location, meetingLink, interviewerName, interviewerEmail, preparationNotes)
	return err
}

func (r *InterviewRepository) setStatus(ctx context.Context, tx pgx.Tx, id string, status model.InterviewStatus) error {
	_, err := tx.Exec(ctx, `
		UPDATE interviews
		SET status = $2,
			updated_at = now()
		WHERE id = $1
	`, id, status)
	return err
}
