package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"internhunt-engine/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

func openTest(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(DialectSQLite, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	db.Now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func posting(i int, url string) domain.JobPosting {
	return domain.JobPosting{
		ID:             fmt.Sprintf("acme-intern-%d", i),
		Company:        "Acme",
		Role:           fmt.Sprintf("Intern %d", i),
		Location:       "Remote",
		ApplicationURL: url,
		Age:            "3d",
		Category:       domain.CategorySoftware,
	}
}

func mustUser(t *testing.T, db *DB, id string) {
	t.Helper()
	if err := db.CreateUser(context.Background(), User{ID: id, Email: id + "@example.com", PasswordHash: "x"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	v, err := db.SchemaVersion(ctx)
	if err != nil || v != schemaVersion {
		t.Fatalf("SchemaVersion = %d, %v", v, err)
	}
}

func TestRebind(t *testing.T) {
	pg := &DB{Dialect: DialectPostgres}
	got := pg.rebind(`SELECT * FROM t WHERE a = ? AND b = ?`)
	if got != `SELECT * FROM t WHERE a = $1 AND b = $2` {
		t.Fatalf("rebind = %q", got)
	}
	lite := &DB{Dialect: DialectSQLite}
	if q := lite.rebind("a = ?"); q != "a = ?" {
		t.Fatalf("sqlite should not rebind: %q", q)
	}
}

func TestUpsertAndListActive(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()

	jobs := []domain.JobPosting{posting(0, "https://a/0"), posting(1, "https://a/1"), posting(2, "https://a/2")}
	if err := db.UpsertActive(ctx, jobs); err != nil {
		t.Fatalf("UpsertActive: %v", err)
	}
	got, err := db.ListActiveJobs(ctx, 0)
	if err != nil {
		t.Fatalf("ListActiveJobs: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, j := range got {
		if j.ID != jobs[i].ID {
			t.Fatalf("order[%d] = %s, want %s", i, j.ID, jobs[i].ID)
		}
		if !j.IsActive || j.Age != "3d" || j.Category != domain.CategorySoftware {
			t.Fatalf("row not round-tripped: %+v", j)
		}
	}

	one, err := db.GetJob(ctx, "acme-intern-1")
	if err != nil || one.ApplicationURL != "https://a/1" {
		t.Fatalf("GetJob = %+v, %v", one, err)
	}
	if _, err := db.GetJob(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListActiveSkipsInactiveAndURLless(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()

	if err := db.UpsertActive(ctx, []domain.JobPosting{posting(0, "https://a/0"), posting(1, "")}); err != nil {
		t.Fatal(err)
	}
	got, err := db.ListActiveJobs(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "acme-intern-0" {
		t.Fatalf("expected only the posting with a url, got %+v", got)
	}

	n, err := db.DeactivateAll(ctx)
	if err != nil || n != 2 {
		t.Fatalf("DeactivateAll = %d, %v", n, err)
	}
	got, _ = db.ListActiveJobs(ctx, 0)
	if len(got) != 0 {
		t.Fatalf("expected nothing active, got %d", len(got))
	}
}

func TestReplaceActive(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()

	if err := db.ReplaceActive(ctx, []domain.JobPosting{posting(0, "https://a/0"), posting(1, "https://a/1")}); err != nil {
		t.Fatal(err)
	}
	// second sync drops job 0, keeps 1, adds 2
	if err := db.ReplaceActive(ctx, []domain.JobPosting{posting(1, "https://b/1"), posting(2, "https://b/2")}); err != nil {
		t.Fatal(err)
	}

	got, err := db.ListActiveJobs(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	// job 2 is new in the second sync, so it lists ahead of job 1
	if len(got) != 2 || got[0].ID != "acme-intern-2" || got[1].ID != "acme-intern-1" {
		t.Fatalf("unexpected active set: %+v", got)
	}
	if got[1].ApplicationURL != "https://b/1" {
		t.Fatalf("upsert did not replace url: %q", got[1].ApplicationURL)
	}

	old, err := db.GetJob(ctx, "acme-intern-0")
	if err != nil || old.IsActive {
		t.Fatalf("dropped job should remain stored but inactive: %+v, %v", old, err)
	}
	if n, _ := db.CountActiveJobs(ctx); n != 2 {
		t.Fatalf("CountActiveJobs = %d", n)
	}
}

func TestUpsertKeepsFirstSeen(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()

	if err := db.UpsertActive(ctx, []domain.JobPosting{posting(0, "https://a/0")}); err != nil {
		t.Fatal(err)
	}
	first, err := db.GetJob(ctx, "acme-intern-0")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := db.DeactivateAll(ctx); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertActive(ctx, []domain.JobPosting{posting(0, "https://a/0"), posting(1, "https://a/1")}); err != nil {
		t.Fatal(err)
	}
	again, err := db.GetJob(ctx, "acme-intern-0")
	if err != nil {
		t.Fatal(err)
	}
	if !again.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("created_at moved: %v -> %v", first.CreatedAt, again.CreatedAt)
	}
	if !again.UpdatedAt.After(first.UpdatedAt) {
		t.Fatalf("updated_at not bumped: %v -> %v", first.UpdatedAt, again.UpdatedAt)
	}

	got, err := db.ListActiveJobs(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "acme-intern-1" || got[1].ID != "acme-intern-0" {
		t.Fatalf("newly seen posting should list first: %+v", got)
	}
}

func TestUpsertBatches(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()

	jobs := make([]domain.JobPosting, upsertBatch*2+7)
	for i := range jobs {
		jobs[i] = posting(i, fmt.Sprintf("https://a/%d", i))
	}
	if err := db.UpsertActive(ctx, jobs); err != nil {
		t.Fatal(err)
	}
	got, err := db.ListActiveJobs(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(jobs) {
		t.Fatalf("len = %d, want %d", len(got), len(jobs))
	}
	// one sync shares a timestamp, so document order holds across batches
	for i := range got {
		if got[i].ID != jobs[i].ID {
			t.Fatalf("order[%d] = %s, want %s", i, got[i].ID, jobs[i].ID)
		}
	}
}

func TestAppliedLifecycle(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()
	mustUser(t, db, "u1")
	mustUser(t, db, "u2")

	job := posting(0, "https://a/0")
	if err := db.MarkApplied(ctx, "u1", job, "phone screen"); err != nil {
		t.Fatalf("MarkApplied: %v", err)
	}
	// duplicate is a success and keeps the first row
	if err := db.MarkApplied(ctx, "u1", job, "other"); err != nil {
		t.Fatalf("duplicate MarkApplied: %v", err)
	}
	if err := db.MarkApplied(ctx, "u1", posting(1, ""), ""); err != nil {
		t.Fatal(err)
	}

	list, err := db.ListApplied(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d", len(list))
	}
	if list[0].JobID != "acme-intern-1" {
		t.Fatalf("most recent first, got %s", list[0].JobID)
	}
	if list[1].Notes != "phone screen" || list[1].ApplicationURL != "https://a/0" {
		t.Fatalf("first application changed: %+v", list[1])
	}

	if n, _ := db.CountApplied(ctx, "u1"); n != 2 {
		t.Fatalf("CountApplied = %d", n)
	}
	if n, _ := db.CountApplied(ctx, "u2"); n != 0 {
		t.Fatalf("other user sees %d", n)
	}

	if err := db.UpdateAppliedNotes(ctx, "u1", job.ID, "offer"); err != nil {
		t.Fatal(err)
	}
	if err := db.UpdateAppliedNotes(ctx, "u2", job.ID, "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	m, err := db.AppliedMap(ctx, "u1")
	if err != nil || len(m) != 2 || m[job.ID].IsZero() {
		t.Fatalf("AppliedMap = %v, %v", m, err)
	}

	if err := db.UnmarkApplied(ctx, "u1", job.ID); err != nil {
		t.Fatal(err)
	}
	if n, _ := db.CountApplied(ctx, "u1"); n != 1 {
		t.Fatalf("after unmark = %d", n)
	}
}

func TestNotSuitableLifecycle(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()
	mustUser(t, db, "u1")

	job := posting(0, "https://a/0")
	for i := 0; i < 2; i++ {
		if err := db.MarkNotSuitable(ctx, "u1", job, "needs citizenship"); err != nil {
			t.Fatalf("MarkNotSuitable #%d: %v", i, err)
		}
	}
	list, err := db.ListNotSuitable(ctx, "u1")
	if err != nil || len(list) != 1 || list[0].Reason != "needs citizenship" {
		t.Fatalf("ListNotSuitable = %+v, %v", list, err)
	}
	set, err := db.NotSuitableSet(ctx, "u1")
	if _, ok := set[job.ID]; err != nil || !ok {
		t.Fatalf("NotSuitableSet = %v, %v", set, err)
	}
	if err := db.UnmarkNotSuitable(ctx, "u1", job.ID); err != nil {
		t.Fatal(err)
	}
	if n, _ := db.CountNotSuitable(ctx, "u1"); n != 0 {
		t.Fatalf("CountNotSuitable = %d", n)
	}
}

func TestUsersAndSessions(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()
	mustUser(t, db, "u1")

	err := db.CreateUser(ctx, User{ID: "u2", Email: "u1@example.com", PasswordHash: "x"})
	if !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}

	u, err := db.UserByEmail(ctx, "u1@example.com")
	if err != nil || u.ID != "u1" {
		t.Fatalf("UserByEmail = %+v, %v", u, err)
	}
	if _, err := db.UserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	now := db.now()
	if err := db.CreateSession(ctx, Session{Token: "live", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}); err != nil {
		t.Fatal(err)
	}
	if err := db.CreateSession(ctx, Session{Token: "stale", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(-time.Hour)}); err != nil {
		t.Fatal(err)
	}

	got, sess, err := db.SessionUser(ctx, "live")
	if err != nil || got.ID != "u1" || sess.UserID != "u1" {
		t.Fatalf("SessionUser = %+v %+v %v", got, sess, err)
	}
	if _, _, err := db.SessionUser(ctx, "stale"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired session should not resolve: %v", err)
	}

	n, err := db.DeleteExpiredSessions(ctx)
	if err != nil || n != 1 {
		t.Fatalf("DeleteExpiredSessions = %d, %v", n, err)
	}
	if err := db.DeleteSession(ctx, "live"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := db.SessionUser(ctx, "live"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted session resolved: %v", err)
	}
}

func TestPermissionDeniedClassification(t *testing.T) {
	pg := wrap("upsert jobs", fmt.Errorf("exec: %w", &pgconn.PgError{
		Code:    "42501",
		Message: "permission denied for table jobs",
		Hint:    "grant INSERT",
	}))
	if !IsPermissionDenied(pg) {
		t.Fatalf("42501 should be permission denied")
	}
	var se *Error
	if !errors.As(pg, &se) || se.Hint != "grant INSERT" || se.Code != "42501" {
		t.Fatalf("pg fields not carried: %#v", pg)
	}

	rls := wrap("upsert jobs", &pgconn.PgError{Code: "XX000", Message: "new row violates row-level security policy"})
	if !IsPermissionDenied(rls) {
		t.Fatalf("policy message should be permission denied")
	}
	if IsPermissionDenied(wrap("x", errors.New("boom"))) {
		t.Fatalf("plain error misclassified")
	}
	if !IsUniqueViolation(wrap("x", &pgconn.PgError{Code: "23505"})) {
		t.Fatalf("23505 should be a unique violation")
	}
}

func TestPermissionDeniedReadOnlySQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ro.db")
	db, err := Open(DialectSQLite, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	ro, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		t.Fatal(err)
	}
	defer ro.Close()
	rodb := &DB{Pool: ro, Dialect: DialectSQLite}

	_, err = rodb.DeactivateAll(context.Background())
	if err == nil {
		t.Fatalf("expected write to fail on read-only database")
	}
	if !IsPermissionDenied(err) {
		t.Fatalf("read-only write should be permission denied, got %v", err)
	}
}
