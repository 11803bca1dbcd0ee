package httpapi

import (
	"context"
	"net/http"
	"time"

	"internhunt-engine/internal/config"
	"internhunt-engine/internal/scrape"
	"internhunt-engine/internal/store"
)

// syncTimeout bounds a sync once started. The sync outlives a client that
// disconnects so storage is never left half reconciled by a cancel.
const syncTimeout = 2 * time.Minute

type JobsHandler struct {
	DB     *store.DB
	Cfg    *config.Config
	Syncer *scrape.Syncer
}

type jobsResponse struct {
	Jobs  []store.Job `json:"jobs"`
	Count int         `json:"count"`
}

func (h JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	if err := h.Cfg.RequireReadCredentials(); err != nil {
		writeSyncError(w, r, err)
		return
	}
	jobs, err := h.DB.ListActiveJobs(r.Context(), store.ListLimit)
	if err != nil {
		writeStoreError(w, r, "Failed to fetch jobs from database: ", err)
		return
	}
	writeJSON(w, jobsResponse{Jobs: jobs, Count: len(jobs)})
}

func (h JobsHandler) Sync(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), syncTimeout)
	defer cancel()

	res, err := h.Syncer.Run(ctx)
	if err != nil {
		writeSyncError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h JobsHandler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Syncer.Status.Load())
}
