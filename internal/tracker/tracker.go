package tracker

import (
	"context"
	"sort"
	"strings"
	"time"

	"internhunt-engine/internal/domain"
	"internhunt-engine/internal/store"

	"golang.org/x/sync/errgroup"
)

// Row is an active job annotated with the viewer's marks.
type Row struct {
	store.Job
	Applied     bool       `json:"applied"`
	AppliedAt   *time.Time `json:"appliedAt,omitempty"`
	NotSuitable bool       `json:"notSuitable"`
}

type Source interface {
	ListActiveJobs(ctx context.Context, limit int) ([]store.Job, error)
	AppliedMap(ctx context.Context, userID string) (map[string]time.Time, error)
	NotSuitableSet(ctx context.Context, userID string) (map[string]struct{}, error)
	CountApplied(ctx context.Context, userID string) (int, error)
	CountNotSuitable(ctx context.Context, userID string) (int, error)
}

type Snapshot struct {
	Rows             []Row
	AppliedCount     int
	NotSuitableCount int
}

// Load reads jobs and the user's annotations concurrently and merges them.
// An empty userID loads jobs only.
func Load(ctx context.Context, src Source, userID string) (Snapshot, error) {
	var (
		jobs        []store.Job
		applied     map[string]time.Time
		notSuitable map[string]struct{}
		snap        Snapshot
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		jobs, err = src.ListActiveJobs(gctx, store.ListLimit)
		return err
	})
	if userID != "" {
		g.Go(func() error {
			var err error
			applied, err = src.AppliedMap(gctx, userID)
			return err
		})
		g.Go(func() error {
			var err error
			notSuitable, err = src.NotSuitableSet(gctx, userID)
			return err
		})
		g.Go(func() error {
			var err error
			snap.AppliedCount, err = src.CountApplied(gctx, userID)
			return err
		})
		g.Go(func() error {
			var err error
			snap.NotSuitableCount, err = src.CountNotSuitable(gctx, userID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	snap.Rows = make([]Row, 0, len(jobs))
	for _, j := range jobs {
		r := Row{Job: j}
		if at, ok := applied[j.ID]; ok {
			at := at
			r.Applied = true
			r.AppliedAt = &at
		}
		if _, ok := notSuitable[j.ID]; ok {
			r.NotSuitable = true
		}
		snap.Rows = append(snap.Rows, r)
	}
	return snap, nil
}

type Filter struct {
	Search          string
	Category        string
	ShowNotSuitable bool
}

func (f Filter) matches(p domain.JobPosting) bool {
	if f.Category != "" && f.Category != domain.CategoryFilterAll && p.Category != f.Category {
		return false
	}
	q := strings.ToLower(f.Search)
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Company), q) ||
		strings.Contains(strings.ToLower(p.Role), q) ||
		strings.Contains(strings.ToLower(p.Location), q)
}

// Browse is the main listing: applied jobs are hidden, not-suitable jobs
// only when the filter asks for them.
func Browse(rows []Row, f Filter) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.Applied {
			continue
		}
		if r.NotSuitable && !f.ShowNotSuitable {
			continue
		}
		if !f.matches(r.JobPosting) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FilterApplied applies search and category to the applied-jobs view.
func FilterApplied(list []store.AppliedJob, f Filter) []store.AppliedJob {
	out := make([]store.AppliedJob, 0, len(list))
	for _, a := range list {
		if f.matches(a.JobPosting) {
			out = append(out, a)
		}
	}
	return out
}

// Categories lists the distinct categories present, sorted.
func Categories(rows []Row) []string {
	seen := map[string]struct{}{}
	for _, r := range rows {
		seen[r.Category] = struct{}{}
	}
	return sortedKeys(seen)
}

func AppliedCategories(list []store.AppliedJob) []string {
	seen := map[string]struct{}{}
	for _, a := range list {
		seen[a.Category] = struct{}{}
	}
	return sortedKeys(seen)
}

func sortedKeys(seen map[string]struct{}) []string {
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
