package scrape

import (
	"sync/atomic"
	"time"
)

type Status struct {
	LastRunAt   string `json:"last_run_at"`
	LastOkAt    string `json:"last_ok_at"`
	LastError   string `json:"last_error"`
	LastCount   int    `json:"last_count"`
	LastWarning bool   `json:"last_warning"`
	Running     bool   `json:"running"`
}

// StatusTracker publishes the latest sync outcome to readers without locks.
type StatusTracker struct {
	v       atomic.Value // Status
	running atomic.Bool
}

func NewStatusTracker() *StatusTracker {
	t := &StatusTracker{}
	t.v.Store(Status{})
	return t
}

func (t *StatusTracker) Load() Status {
	st, _ := t.v.Load().(Status)
	return st
}

func (t *StatusTracker) Running() bool { return t.running.Load() }

func (t *StatusTracker) tryBegin() bool {
	if !t.running.CompareAndSwap(false, true) {
		return false
	}
	st := t.Load()
	st.Running = true
	t.v.Store(st)
	return true
}

func (t *StatusTracker) markStarted(now time.Time) {
	st := t.Load()
	st.LastRunAt = now.UTC().Format(time.RFC3339)
	t.v.Store(st)
}

// abort releases the running flag for a sync that never started work.
func (t *StatusTracker) abort() {
	st := t.Load()
	st.Running = false
	t.v.Store(st)
	t.running.Store(false)
}

func (t *StatusTracker) finish(now time.Time, res Result, err error) {
	st := t.Load()
	st.Running = false
	st.LastCount = res.Count
	st.LastWarning = res.Warning
	if err != nil {
		st.LastError = err.Error()
	} else {
		st.LastError = ""
		st.LastOkAt = now.UTC().Format(time.RFC3339)
	}
	t.v.Store(st)
	t.running.Store(false)
}
