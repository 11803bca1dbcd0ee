package scrape

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"internhunt-engine/internal/config"
	"internhunt-engine/internal/domain"
	"internhunt-engine/internal/events"
	"internhunt-engine/internal/readme"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog/log"
)

const (
	MsgNoJobs = "No jobs with application URLs found in README"
)

var ErrSyncInProgress = errors.New("a sync is already in progress")

// TooSoonError rejects a sync started within sync.min_interval_seconds of
// the previous one.
type TooSoonError struct {
	RetryAfter time.Duration
}

func (e *TooSoonError) Error() string {
	return fmt.Sprintf("sync ran recently; retry in %s", e.RetryAfter.Round(time.Second))
}

type Fetcher interface {
	Document(ctx context.Context, url string) (string, error)
}

type Store interface {
	DeactivateAll(ctx context.Context) (int64, error)
	UpsertActive(ctx context.Context, jobs []domain.JobPosting) error
	ReplaceActive(ctx context.Context, jobs []domain.JobPosting) error
}

type Result struct {
	OK      bool   `json:"ok"`
	Warning bool   `json:"warning,omitempty"`
	Count   int    `json:"count"`
	Message string `json:"message"`

	Parsed   int           `json:"-"`
	Dropped  int           `json:"-"`
	Duration time.Duration `json:"-"`
}

type Syncer struct {
	Cfg      *config.Config
	Fetcher  Fetcher
	Store    Store
	Hub      *events.Hub
	LockPath string

	Status *StatusTracker

	mu        sync.Mutex
	lastStart time.Time
}

func NewSyncer(cfg *config.Config, f Fetcher, st Store, hub *events.Hub, lockPath string) *Syncer {
	return &Syncer{
		Cfg:      cfg,
		Fetcher:  f,
		Store:    st,
		Hub:      hub,
		LockPath: lockPath,
		Status:   NewStatusTracker(),
	}
}

// Run fetches the README, extracts postings and reconciles storage so the
// active set equals the postings that carry an application URL.
func (s *Syncer) Run(ctx context.Context) (Result, error) {
	cfg := s.Cfg
	if cfg == nil {
		d := config.Defaults()
		cfg = &d
	}
	if err := cfg.RequireWriteCredentials(); err != nil {
		return Result{}, err
	}

	started := time.Now()
	unlock, err := s.lock()
	if err != nil {
		return Result{}, err
	}
	defer unlock()

	if err := s.checkInterval(cfg, started); err != nil {
		s.Status.abort()
		return Result{}, err
	}

	s.Status.markStarted(started)
	reqID := events.RequestID(ctx)
	s.Hub.Publish(events.MakeEvent(reqID, events.TypeSyncStarted, 1, nil))
	log.Info().Str("stage", "sync").Str("url", cfg.Upstream.URL).Msg("sync started")

	res, err := s.run(ctx, cfg)
	res.Duration = time.Since(started)
	s.Status.finish(time.Now(), res, err)

	if err != nil {
		log.Error().Err(err).Str("stage", "sync").Dur("took", res.Duration).Msg("sync failed")
		s.Hub.Publish(events.MakeEvent(reqID, events.TypeSyncFailed, 1, map[string]string{"error": err.Error()}))
		return Result{}, err
	}

	log.Info().Str("stage", "sync").
		Int("count", res.Count).
		Int("parsed", res.Parsed).
		Int("dropped", res.Dropped).
		Bool("warning", res.Warning).
		Dur("took", res.Duration).
		Msg(res.Message)
	if !res.Warning {
		s.Hub.Publish(events.MakeEvent(reqID, events.TypeJobsSynced, 1, map[string]int{"count": res.Count}))
	}
	return res, nil
}

func (s *Syncer) run(ctx context.Context, cfg *config.Config) (Result, error) {
	doc, err := s.Fetcher.Document(ctx, cfg.Upstream.URL)
	if err != nil {
		return Result{}, err
	}

	parsed := readme.Parse(doc)
	jobs := WithApplicationURL(parsed)
	res := Result{OK: true, Parsed: len(parsed), Dropped: len(parsed) - len(jobs)}

	if len(jobs) == 0 {
		res.Warning = true
		res.Message = MsgNoJobs
		return res, nil
	}

	if cfg.Sync.Transactional {
		if err := s.Store.ReplaceActive(ctx, jobs); err != nil {
			return Result{}, err
		}
	} else {
		// Two writes: a failure in between leaves nothing active until the
		// next successful sync.
		if _, err := s.Store.DeactivateAll(ctx); err != nil {
			return Result{}, err
		}
		if err := s.Store.UpsertActive(ctx, jobs); err != nil {
			return Result{}, err
		}
	}

	res.Count = len(jobs)
	res.Message = fmt.Sprintf("Successfully synced %d jobs", len(jobs))
	return res, nil
}

// WithApplicationURL keeps postings whose trimmed application URL is non-empty.
func WithApplicationURL(in []domain.JobPosting) []domain.JobPosting {
	out := make([]domain.JobPosting, 0, len(in))
	for _, j := range in {
		if strings.TrimSpace(j.ApplicationURL) == "" {
			continue
		}
		out = append(out, j)
	}
	return out
}

func (s *Syncer) checkInterval(cfg *config.Config, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	gap := time.Duration(cfg.Sync.MinIntervalSeconds) * time.Second
	if gap > 0 && !s.lastStart.IsZero() {
		if wait := gap - now.Sub(s.lastStart); wait > 0 {
			return &TooSoonError{RetryAfter: wait}
		}
	}
	s.lastStart = now
	return nil
}

// lock marks the sync running in-process and takes the cross-process file
// lock when a lock path is configured.
func (s *Syncer) lock() (func(), error) {
	if !s.Status.tryBegin() {
		return nil, ErrSyncInProgress
	}
	if s.LockPath == "" {
		return func() {}, nil
	}
	fl := flock.New(s.LockPath)
	ok, err := fl.TryLock()
	if err != nil {
		s.Status.abort()
		return nil, fmt.Errorf("sync lock: %w", err)
	}
	if !ok {
		s.Status.abort()
		return nil, ErrSyncInProgress
	}
	return func() { _ = fl.Unlock() }, nil
}

// Scheduled is the periodic form of Run. A sync that is already running or
// ran too recently is skipped rather than reported as a failure.
func (s *Syncer) Scheduled(ctx context.Context) error {
	_, err := s.Run(ctx)
	var tooSoon *TooSoonError
	if errors.Is(err, ErrSyncInProgress) || errors.As(err, &tooSoon) {
		log.Debug().Err(err).Str("stage", "sync").Msg("scheduled sync skipped")
		return nil
	}
	return err
}
