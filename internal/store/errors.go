package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var ErrNotFound = errors.New("not found")

const (
	pgInsufficientPrivilege = "42501"
	pgUniqueViolation       = "23505"
)

// Error carries the database's own code/message/detail/hint so callers can
// report them verbatim.
type Error struct {
	Op      string
	Code    string
	Message string
	Detail  string
	Hint    string
	Err     error

	sqliteCode int
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (code %s)", e.Op, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	e := &Error{Op: op, Message: err.Error(), Err: err}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		e.Code = pgErr.Code
		e.Message = pgErr.Message
		e.Detail = pgErr.Detail
		e.Hint = pgErr.Hint
		return e
	}

	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		e.sqliteCode = sqErr.Code()
		e.Code = fmt.Sprintf("SQLITE_%d", sqErr.Code())
	}
	return e
}

// IsPermissionDenied reports whether the store refused a write for lack of
// privileges (postgres 42501 or a row-level security policy, sqlite
// read-only/permission/auth).
func IsPermissionDenied(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	if e.Code == pgInsufficientPrivilege || strings.Contains(strings.ToLower(e.Message), "policy") {
		return true
	}
	switch e.sqliteCode & 0xff {
	case sqlite3.SQLITE_READONLY, sqlite3.SQLITE_PERM, sqlite3.SQLITE_AUTH:
		return true
	}
	return false
}

func IsUniqueViolation(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	if e.Code == pgUniqueViolation {
		return true
	}
	return e.sqliteCode == sqlite3.SQLITE_CONSTRAINT_UNIQUE || e.sqliteCode == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
