package store

import (
	"context"
	"database/sql"
	"time"

	"internhunt-engine/internal/domain"
)

type AppliedJob struct {
	ID     int64  `json:"id"`
	UserID string `json:"userId"`
	JobID  string `json:"jobId"`
	domain.JobPosting
	Notes     string    `json:"notes,omitempty"`
	AppliedAt time.Time `json:"appliedAt"`
}

type NotSuitableJob struct {
	ID       int64  `json:"id"`
	UserID   string `json:"userId"`
	JobID    string `json:"jobId"`
	Company  string `json:"company"`
	Role     string `json:"role"`
	Location string `json:"location"`
	Category string `json:"category"`
	Reason   string `json:"reason,omitempty"`

	MarkedAt time.Time `json:"markedAt"`
}

// ---- applied ----

// MarkApplied records an application. Marking the same job twice is a no-op.
func (d *DB) MarkApplied(ctx context.Context, userID string, job domain.JobPosting, notes string) error {
	age := job.Age
	if age == "" {
		age = domain.AgeUnknown
	}
	_, err := d.exec(ctx, d.Pool, `
INSERT INTO applied_jobs (user_id, job_id, company, role, location, category, age, application_url, notes, applied_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id, job_id) DO NOTHING;`,
		userID, job.ID, job.Company, job.Role, job.Location, job.Category, age,
		nullString(job.ApplicationURL), nullString(notes), d.stamp(),
	)
	return wrap("mark applied", err)
}

func (d *DB) UnmarkApplied(ctx context.Context, userID, jobID string) error {
	_, err := d.exec(ctx, d.Pool, `DELETE FROM applied_jobs WHERE user_id = ? AND job_id = ?;`, userID, jobID)
	return wrap("unmark applied", err)
}

// UpdateAppliedNotes replaces the notes on an existing application.
func (d *DB) UpdateAppliedNotes(ctx context.Context, userID, jobID, notes string) error {
	res, err := d.exec(ctx, d.Pool, `UPDATE applied_jobs SET notes = ? WHERE user_id = ? AND job_id = ?;`,
		nullString(notes), userID, jobID)
	if err != nil {
		return wrap("update notes", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListApplied returns the user's applications, most recent first.
func (d *DB) ListApplied(ctx context.Context, userID string) ([]AppliedJob, error) {
	rows, err := d.query(ctx, d.Pool, `
SELECT id, user_id, job_id, company, role, location, category, age, application_url, notes, applied_at
FROM applied_jobs
WHERE user_id = ?
ORDER BY applied_at DESC, id DESC;`, userID)
	if err != nil {
		return nil, wrap("list applied", err)
	}
	defer rows.Close()

	out := []AppliedJob{}
	for rows.Next() {
		var (
			a         AppliedJob
			url       sql.NullString
			notes     sql.NullString
			appliedAt string
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.JobID, &a.Company, &a.Role, &a.Location,
			&a.Category, &a.Age, &url, &notes, &appliedAt); err != nil {
			return nil, wrap("list applied", err)
		}
		a.JobPosting.ID = a.JobID
		a.ApplicationURL = url.String
		a.Notes = notes.String
		a.AppliedAt = parseStamp(appliedAt)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list applied", err)
	}
	return out, nil
}

// AppliedMap maps job id to applied time for the user.
func (d *DB) AppliedMap(ctx context.Context, userID string) (map[string]time.Time, error) {
	rows, err := d.query(ctx, d.Pool, `SELECT job_id, applied_at FROM applied_jobs WHERE user_id = ?;`, userID)
	if err != nil {
		return nil, wrap("applied map", err)
	}
	defer rows.Close()

	out := map[string]time.Time{}
	for rows.Next() {
		var id, at string
		if err := rows.Scan(&id, &at); err != nil {
			return nil, wrap("applied map", err)
		}
		out[id] = parseStamp(at)
	}
	return out, wrap("applied map", rows.Err())
}

func (d *DB) CountApplied(ctx context.Context, userID string) (int, error) {
	var n int
	err := d.queryRow(ctx, d.Pool, `SELECT COUNT(*) FROM applied_jobs WHERE user_id = ?;`, userID).Scan(&n)
	return n, wrap("count applied", err)
}

// ---- not suitable ----

// MarkNotSuitable hides a job for the user. Marking twice is a no-op.
func (d *DB) MarkNotSuitable(ctx context.Context, userID string, job domain.JobPosting, reason string) error {
	_, err := d.exec(ctx, d.Pool, `
INSERT INTO not_suitable_jobs (user_id, job_id, company, role, location, category, reason, marked_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id, job_id) DO NOTHING;`,
		userID, job.ID, job.Company, job.Role, job.Location, job.Category, nullString(reason), d.stamp(),
	)
	return wrap("mark not suitable", err)
}

func (d *DB) UnmarkNotSuitable(ctx context.Context, userID, jobID string) error {
	_, err := d.exec(ctx, d.Pool, `DELETE FROM not_suitable_jobs WHERE user_id = ? AND job_id = ?;`, userID, jobID)
	return wrap("unmark not suitable", err)
}

func (d *DB) ListNotSuitable(ctx context.Context, userID string) ([]NotSuitableJob, error) {
	rows, err := d.query(ctx, d.Pool, `
SELECT id, user_id, job_id, company, role, location, category, reason, marked_at
FROM not_suitable_jobs
WHERE user_id = ?
ORDER BY marked_at DESC, id DESC;`, userID)
	if err != nil {
		return nil, wrap("list not suitable", err)
	}
	defer rows.Close()

	out := []NotSuitableJob{}
	for rows.Next() {
		var (
			n        NotSuitableJob
			reason   sql.NullString
			markedAt string
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.JobID, &n.Company, &n.Role, &n.Location,
			&n.Category, &reason, &markedAt); err != nil {
			return nil, wrap("list not suitable", err)
		}
		n.Reason = reason.String
		n.MarkedAt = parseStamp(markedAt)
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list not suitable", err)
	}
	return out, nil
}

// NotSuitableSet returns the ids of jobs the user marked not suitable.
func (d *DB) NotSuitableSet(ctx context.Context, userID string) (map[string]struct{}, error) {
	rows, err := d.query(ctx, d.Pool, `SELECT job_id FROM not_suitable_jobs WHERE user_id = ?;`, userID)
	if err != nil {
		return nil, wrap("not suitable set", err)
	}
	defer rows.Close()

	out := map[string]struct{}{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrap("not suitable set", err)
		}
		out[id] = struct{}{}
	}
	return out, wrap("not suitable set", rows.Err())
}

func (d *DB) CountNotSuitable(ctx context.Context, userID string) (int, error) {
	var n int
	err := d.queryRow(ctx, d.Pool, `SELECT COUNT(*) FROM not_suitable_jobs WHERE user_id = ?;`, userID).Scan(&n)
	return n, wrap("count not suitable", err)
}
