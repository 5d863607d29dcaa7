package store

import (
	"context"
	"time"
)

func (r *sqliteRepo) CreateJob(ctx context.Context, id, jobType string) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO jobs(id, type, status, progress, total, created_at, updated_at) VALUES(?, ?, ?, 0, 0, ?, ?)",
		id, jobType, JobPending, now, now)
	return err
}

func (r *sqliteRepo) GetJob(ctx context.Context, id string) (*Job, error) {
	row := r.db.QueryRowContext(ctx, jobSelect+" WHERE id = ?", id)
	return scanJob(row)
}

const jobSelect = `SELECT id, type, status, progress, total, message, result, error, cancelled, created_at, updated_at, completed_at FROM jobs`

func scanJob(row interface{ Scan(...any) error }) (*Job, error) {
	var j Job
	if err := row.Scan(&j.ID, &j.Type, &j.Status, &j.Progress, &j.Total, &j.Message, &j.Result, &j.Error, &j.Cancelled, &j.CreatedAt, &j.UpdatedAt, &j.CompletedAt); err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *sqliteRepo) UpdateJobProgress(ctx context.Context, id string, progress, total int, message string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE jobs SET status = ?, progress = ?, total = ?, message = ?, updated_at = ? WHERE id = ?",
		JobRunning, progress, total, message, time.Now().UTC(), id)
	return err
}

func (r *sqliteRepo) CompleteJob(ctx context.Context, id string, result *string) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		"UPDATE jobs SET status = ?, result = ?, updated_at = ?, completed_at = ? WHERE id = ?",
		JobCompleted, nullString(result), now, now, id)
	return err
}

func (r *sqliteRepo) FailJob(ctx context.Context, id string, errMsg string, cancelled bool) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		"UPDATE jobs SET status = ?, error = ?, cancelled = ?, updated_at = ?, completed_at = ? WHERE id = ?",
		JobFailed, errMsg, boolToInt(cancelled), now, now, id)
	return err
}

func (r *sqliteRepo) ListJobsByStatus(ctx context.Context, statuses ...string) ([]Job, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders, args := inClauseStrings(statuses)
	rows, err := r.db.QueryContext(ctx, jobSelect+" WHERE status IN ("+placeholders+") ORDER BY created_at", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

func (r *sqliteRepo) DeleteOldJobs(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM jobs WHERE status IN (?, ?) AND completed_at IS NOT NULL AND completed_at < ?",
		JobCompleted, JobFailed, olderThan)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func inClauseStrings(vals []string) (string, []any) {
	placeholders := ""
	args := make([]any, len(vals))
	for i, v := range vals {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		args[i] = v
	}
	return placeholders, args
}
