package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"internhunt-engine/internal/domain"
)

// ListLimit caps the active job listing.
const ListLimit = 10000

// upsertBatch keeps each multi-row insert well under sqlite's variable limit.
const upsertBatch = 100

type Job struct {
	domain.JobPosting
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const jobColumns = `id, company, role, location, category, age, application_url, is_active, created_at, updated_at`

func scanJob(sc interface{ Scan(...any) error }) (Job, error) {
	var (
		j         Job
		url       sql.NullString
		createdAt string
		updatedAt string
	)
	if err := sc.Scan(
		&j.ID,
		&j.Company,
		&j.Role,
		&j.Location,
		&j.Category,
		&j.Age,
		&url,
		&j.IsActive,
		&createdAt,
		&updatedAt,
	); err != nil {
		return Job{}, err
	}
	j.ApplicationURL = url.String
	j.CreatedAt = parseStamp(createdAt)
	j.UpdatedAt = parseStamp(updatedAt)
	return j, nil
}

// ListActiveJobs returns active jobs that carry an application URL. Postings
// first seen in a later sync come first; ties keep README order.
func (d *DB) ListActiveJobs(ctx context.Context, limit int) ([]Job, error) {
	if limit <= 0 || limit > ListLimit {
		limit = ListLimit
	}
	rows, err := d.query(ctx, d.Pool, `
SELECT `+jobColumns+`
FROM jobs
WHERE is_active = ?
  AND application_url IS NOT NULL
  AND TRIM(application_url) <> ''
ORDER BY created_at DESC, ordinal ASC
LIMIT ?;`, true, limit)
	if err != nil {
		return nil, wrap("list jobs", err)
	}
	defer rows.Close()

	out := make([]Job, 0, 256)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, wrap("list jobs", err)
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list jobs", err)
	}
	return out, nil
}

func (d *DB) GetJob(ctx context.Context, id string) (Job, error) {
	row := d.queryRow(ctx, d.Pool, `SELECT `+jobColumns+` FROM jobs WHERE id = ?;`, id)
	j, err := scanJob(row)
	if err != nil {
		return Job{}, wrap("get job", err)
	}
	return j, nil
}

// CountActiveJobs counts jobs currently listed.
func (d *DB) CountActiveJobs(ctx context.Context) (int, error) {
	var n int
	err := d.queryRow(ctx, d.Pool, `
SELECT COUNT(*) FROM jobs
WHERE is_active = ? AND application_url IS NOT NULL AND TRIM(application_url) <> '';`, true).Scan(&n)
	return n, wrap("count jobs", err)
}

// DeactivateAll marks every active job inactive.
func (d *DB) DeactivateAll(ctx context.Context) (int64, error) {
	return d.deactivateAll(ctx, d.Pool)
}

// UpsertActive writes postings as active, replacing rows with the same id.
func (d *DB) UpsertActive(ctx context.Context, jobs []domain.JobPosting) error {
	return d.upsertActive(ctx, d.Pool, jobs)
}

// ReplaceActive deactivates and upserts in one transaction so readers never
// observe an empty listing.
func (d *DB) ReplaceActive(ctx context.Context, jobs []domain.JobPosting) error {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return wrap("replace jobs", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := d.deactivateAll(ctx, tx); err != nil {
		return err
	}
	if err := d.upsertActive(ctx, tx, jobs); err != nil {
		return err
	}
	return wrap("replace jobs: commit", tx.Commit())
}

func (d *DB) deactivateAll(ctx context.Context, q querier) (int64, error) {
	res, err := d.exec(ctx, q, `UPDATE jobs SET is_active = ? WHERE is_active = ?;`, false, true)
	if err != nil {
		return 0, wrap("deactivate jobs", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (d *DB) upsertActive(ctx context.Context, q querier, jobs []domain.JobPosting) error {
	now := d.stamp()
	for start := 0; start < len(jobs); start += upsertBatch {
		end := min(start+upsertBatch, len(jobs))
		batch := jobs[start:end]

		var b strings.Builder
		b.WriteString(`INSERT INTO jobs (id, company, role, location, category, age, application_url, is_active, ordinal, created_at, updated_at) VALUES `)
		args := make([]any, 0, len(batch)*11)
		for i, j := range batch {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			age := j.Age
			if age == "" {
				age = domain.AgeUnknown
			}
			args = append(args, j.ID, j.Company, j.Role, j.Location, j.Category, age,
				nullString(j.ApplicationURL), true, start+i, now, now)
		}
		b.WriteString(`
ON CONFLICT(id) DO UPDATE SET
  company = excluded.company,
  role = excluded.role,
  location = excluded.location,
  category = excluded.category,
  age = excluded.age,
  application_url = excluded.application_url,
  is_active = excluded.is_active,
  ordinal = excluded.ordinal,
  updated_at = excluded.updated_at;`)

		if _, err := d.exec(ctx, q, b.String(), args...); err != nil {
			return wrap("upsert jobs", err)
		}
	}
	return nil
}
