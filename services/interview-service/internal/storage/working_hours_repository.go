package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tanvir-ahmed/hirecal/libs/db"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/model"
)

type WorkingHoursRepository struct {
	pool *db.Pool
}

func NewWorkingHoursRepository(pool *db.Pool) *WorkingHoursRepository {
	return &WorkingHoursRepository{pool: pool}
}

const workingHoursColumns = `
	recruiter_id, weekday, is_working_day, start_minute, end_minute,
	lunch_start_minute, lunch_end_minute, buffer_minutes, max_interviews_per_day, updated_at`

func scanWorkingHours(row pgx.Row) (model.WorkingHoursConfig, error) {
	var cfg model.WorkingHoursConfig
	var weekday int
	err := row.Scan(
		&cfg.RecruiterID,
		&weekday,
		&cfg.IsWorkingDay,
		&cfg.StartMinute,
		&cfg.EndMinute,
		&cfg.LunchStartMinute,
		&cfg.LunchEndMinute,
		&cfg.BufferMinutes,
		&cfg.MaxInterviewsPerDay,
		&cfg.UpdatedAt,
	)
	if err != nil {
		return model.WorkingHoursConfig{}, err
	}
	cfg.Weekday = time.Weekday(weekday)
	return cfg, nil
}

// Get returns the config for one weekday. A missing row degrades to a
// non-working day, never an error.
func (r *WorkingHoursRepository) Get(ctx context.Context, recruiterID string, weekday time.Weekday) (model.WorkingHoursConfig, error) {
	cfg, err := scanWorkingHours(r.pool.QueryRow(ctx, `
		SELECT`+workingHoursColumns+`
		FROM recruiter_working_hours
		WHERE recruiter_id = $1 AND weekday = $2
	`, recruiterID, int(weekday)))
	if err == nil {
		return cfg, nil
	}
	if IsNotFound(err) {
		return model.NonWorkingDay(recruiterID, weekday), nil
	}
	return model.WorkingHoursConfig{}, err
}

// ListWeek returns all seven weekday configs, filling missing days with
// non-working defaults.
func (r *WorkingHoursRepository) ListWeek(ctx context.Context, recruiterID string) ([]model.WorkingHoursConfig, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+workingHoursColumns+`
		FROM recruiter_working_hours
		WHERE recruiter_id = $1
		ORDER BY weekday ASC
	`, recruiterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byDay := map[time.Weekday]model.WorkingHoursConfig{}
	for rows.Next() {
		cfg, err := scanWorkingHours(rows)
		if err != nil {
			return nil, err
		}
		byDay[cfg.Weekday] = cfg
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	out := make([]model.WorkingHoursConfig, 0, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if cfg, ok := byDay[wd]; ok {
			out = append(out, cfg)
		} else {
			out = append(out, model.NonWorkingDay(recruiterID, wd))
		}
	}
	return out, nil
}

// Upsert overwrites one weekday config. Configs are never hard-deleted.
func (r *WorkingHoursRepository) Upsert(ctx context.Context, cfg model.WorkingHoursConfig) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO recruiter_working_hours
			(recruiter_id, weekday, is_working_day, start_minute, end_minute,
			 lunch_start_minute, lunch_end_minute, buffer_minutes, max_interviews_per_day)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (recruiter_id, weekday) DO UPDATE
		SET is_working_day = EXCLUDED.is_working_day,
			start_minute = EXCLUDED.start_minute,
			end_minute = EXCLUDED.end_minute,
			lunch_start_minute = EXCLUDED.lunch_start_minute,
			lunch_end_minute = EXCLUDED.lunch_end_minute,
			buffer_minutes = EXCLUDED.buffer_minutes,
			max_interviews_per_day = EXCLUDED.max_interviews_per_day,
			updated_at = now()
	`, cfg.RecruiterID, int(cfg.Weekday), cfg.IsWorkingDay, cfg.StartMinute, cfg.EndMinute,
		cfg.LunchStartMinute, cfg.LunchEndMinute, cfg.BufferMinutes, cfg.MaxInterviewsPerDay)
	return err
}

// UpsertBatch writes several weekday configs in one transaction. When
// replaceUnspecified is set, weekdays absent from configs are overwritten as
// non-working.
func (r *WorkingHoursRepository) UpsertBatch(ctx context.Context, recruiterID string, configs []model.WorkingHoursConfig, replaceUnspecified bool) error {
	return r.pool.WithinTx(ctx, func(tx pgx.Tx) error {
		specified := map[time.Weekday]bool{}
		for _, cfg := range configs {
			specified[cfg.Weekday] = true
			if _, err := tx.Exec(ctx, `
				INSERT INTO recruiter_working_hours
					(recruiter_id, weekday, is_working_day, start_minute, end_minute,
					 lunch_start_minute, lunch_end_minute, buffer_minutes, max_interviews_per_day)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				ON CONFLICT (recruiter_id, weekday) DO UPDATE
				SET is_working_day = EXCLUDED.is_working_day,
					start_minute = EXCLUDED.start_minute,
					end_minute = EXCLUDED.end_minute,
					lunch_start_minute = EXCLUDED.lunch_start_minute,
					lunch_end_minute = EXCLUDED.lunch_end_minute,
					buffer_minutes = EXCLUDED.buffer_minutes,
					max_interviews_per_day = EXCLUDED.max_interviews_per_day,
					updated_at = now()
			`, recruiterID, int(cfg.Weekday), cfg.IsWorkingDay, cfg.StartMinute, cfg.EndMinute,
				cfg.LunchStartMinute, cfg.LunchEndMinute, cfg.BufferMinutes, cfg.MaxInterviewsPerDay); err != nil {
				return err
			}
		}
		if !replaceUnspecified {
			return nil
		}
		for wd := time.Sunday; wd <= time.Saturday; wd++ {
			if specified[wd] {
				continue
			}
			off := model.NonWorkingDay(recruiterID, wd)
			if _, err := tx.Exec(ctx, `
				INSERT INTO recruiter_working_hours
					(recruiter_id, weekday, is_working_day, start_minute, end_minute,
					 lunch_start_minute, lunch_end_minute, buffer_minutes, max_interviews_per_day)
				VALUES ($1, $2, false, 0, 0, -1, -1, $3, $4)
				ON CONFLICT (recruiter_id, weekday) DO UPDATE
				SET is_working_day = false,
					start_minute = 0,
					end_minute = 0,
					lunch_start_minute = -1,
					lunch_end_minute = -1,
					updated_at = now()
			`, recruiterID, int(wd), off.BufferMinutes, off.MaxInterviewsPerDay); err != nil {
				return err
			}
		}
		return nil
	})
}
