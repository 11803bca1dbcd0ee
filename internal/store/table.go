package store

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaVersion = 1

// schemaV1 holds the statements for the first schema. %[1]s is the
// auto-increment primary key for the dialect.
var schemaV1 = []string{
	`
CREATE TABLE IF NOT EXISTS jobs (
  id TEXT PRIMARY KEY,
  company TEXT NOT NULL,
  role TEXT NOT NULL,
  location TEXT NOT NULL,
  category TEXT NOT NULL,
  age TEXT NOT NULL DEFAULT 'N/A',
  application_url TEXT,
  is_active BOOLEAN NOT NULL DEFAULT FALSE,
  ordinal INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);`,
	`
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  created_at TEXT NOT NULL
);`,
	`
CREATE TABLE IF NOT EXISTS sessions (
  token TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  created_at TEXT NOT NULL,
  expires_at TEXT NOT NULL
);`,
	`
CREATE TABLE IF NOT EXISTS applied_jobs (
  id %[1]s,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  job_id TEXT NOT NULL,
  company TEXT NOT NULL,
  role TEXT NOT NULL,
  location TEXT NOT NULL,
  category TEXT NOT NULL,
  age TEXT NOT NULL DEFAULT 'N/A',
  application_url TEXT,
  notes TEXT,
  applied_at TEXT NOT NULL,
  UNIQUE (user_id, job_id)
);`,
	`
CREATE TABLE IF NOT EXISTS not_suitable_jobs (
  id %[1]s,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  job_id TEXT NOT NULL,
  company TEXT NOT NULL,
  role TEXT NOT NULL,
  location TEXT NOT NULL,
  category TEXT NOT NULL,
  reason TEXT,
  marked_at TEXT NOT NULL,
  UNIQUE (user_id, job_id)
);`,

	// ---- indexes ----

	`CREATE INDEX IF NOT EXISTS idx_jobs_active_created ON jobs(is_active, created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_applied_user_at ON applied_jobs(user_id, applied_at);`,
	`CREATE INDEX IF NOT EXISTS idx_not_suitable_user ON not_suitable_jobs(user_id);`,
}

// Migrate brings the schema up to date. sqlite tracks the version in
// PRAGMA user_version, postgres in a schema_version table.
func (d *DB) Migrate(ctx context.Context) error {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return wrap("migrate", err)
	}
	defer func() { _ = tx.Rollback() }()

	v, err := d.currentVersion(ctx, tx)
	if err != nil {
		return wrap("migrate: read version", err)
	}
	if v >= schemaVersion {
		return tx.Commit()
	}

	pk := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if d.Dialect == DialectPostgres {
		pk = "BIGSERIAL PRIMARY KEY"
	}
	for _, stmt := range schemaV1 {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(stmt, pk)); err != nil {
			return wrap("migrate: schema v1", err)
		}
	}

	if err := d.setVersion(ctx, tx, schemaVersion); err != nil {
		return wrap("migrate: set version", err)
	}
	return tx.Commit()
}

func (d *DB) currentVersion(ctx context.Context, tx *sql.Tx) (int, error) {
	var v int
	if d.Dialect == DialectSQLite {
		err := tx.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v)
		return v, err
	}
	if _, err := tx.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);`); err != nil {
		return 0, err
	}
	err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version;`).Scan(&v)
	return v, err
}

func (d *DB) setVersion(ctx context.Context, tx *sql.Tx, v int) error {
	if d.Dialect == DialectSQLite {
		_, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d;`, v))
		return err
	}
	_, err := tx.ExecContext(ctx, `INSERT INTO schema_version(version) VALUES ($1);`, v)
	return err
}

// SchemaVersion reports the applied schema version.
func (d *DB) SchemaVersion(ctx context.Context) (int, error) {
	tx, err := d.Pool.BeginTx(ctx, &sql.TxOptions{ReadOnly: d.Dialect == DialectPostgres})
	if err != nil {
		return 0, wrap("schema version", err)
	}
	defer func() { _ = tx.Rollback() }()
	if d.Dialect == DialectSQLite {
		var v int
		err := tx.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v)
		return v, wrap("schema version", err)
	}
	var v int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version;`).Scan(&v)
	return v, wrap("schema version", err)
}
