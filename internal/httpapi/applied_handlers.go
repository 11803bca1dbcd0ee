package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"internhunt-engine/internal/config"
	"internhunt-engine/internal/events"
	"internhunt-engine/internal/store"
	"internhunt-engine/internal/tracker"
)

type AppliedHandler struct {
	DB  *store.DB
	Hub *events.Hub
	Cfg *config.Config

	Now func() time.Time
}

type markRequest struct {
	JobID  string `json:"job_id"`
	Notes  string `json:"notes,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type appliedListResponse struct {
	tracker.Page[store.AppliedJob]
	Categories []string `json:"categories"`
}

func (h AppliedHandler) List(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	all, err := h.DB.ListApplied(r.Context(), u.ID)
	if err != nil {
		writeStoreError(w, r, "Failed to fetch applied jobs: ", err)
		return
	}

	f := tracker.Filter{Search: r.URL.Query().Get("q"), Category: r.URL.Query().Get("category")}
	filtered := tracker.FilterApplied(all, f)

	writeJSON(w, appliedListResponse{
		Page:       tracker.Paginate(filtered, queryInt(r, "page"), perPage(r, h.Cfg)),
		Categories: tracker.AppliedCategories(all),
	})
}

func (h AppliedHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	var req markRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}
	job, ok := lookupJob(w, r, h.DB, req.JobID)
	if !ok {
		return
	}
	if err := h.DB.MarkApplied(r.Context(), u.ID, job.JobPosting, req.Notes); err != nil {
		writeStoreError(w, r, "Failed to mark job as applied: ", err)
		return
	}
	h.changed(r, u.ID, job.ID, true)
	WriteJSON(w, http.StatusCreated, map[string]any{"ok": true, "job_id": job.ID})
}

func (h AppliedHandler) Count(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	n, err := h.DB.CountApplied(r.Context(), u.ID)
	if err != nil {
		writeStoreError(w, r, "Failed to count applied jobs: ", err)
		return
	}
	writeJSON(w, map[string]int{"count": n})
}

func (h AppliedHandler) Export(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		WriteError(w, r, http.StatusBadRequest, "invalid_format", "format must be json or csv")
		return
	}

	list, err := h.DB.ListApplied(r.Context(), u.ID)
	if err != nil {
		writeStoreError(w, r, "Failed to fetch applied jobs: ", err)
		return
	}

	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	name := tracker.ExportFilename(now, format)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if format == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		_ = tracker.ExportCSV(w, list)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = tracker.ExportJSON(w, list)
}

// UpdateNotes replaces the notes on /api/applied/{jobID}.
func (h AppliedHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	id := pathID(r, "/api/applied/")
	if id == "" {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid job id")
		return
	}
	var req markRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}
	err := h.DB.UpdateAppliedNotes(r.Context(), u.ID, id, req.Notes)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", "job is not marked as applied")
		return
	}
	if err != nil {
		writeStoreError(w, r, "Failed to update notes: ", err)
		return
	}
	writeJSON(w, map[string]any{"ok": true, "job_id": id})
}

func (h AppliedHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	id := pathID(r, "/api/applied/")
	if id == "" {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid job id")
		return
	}
	if err := h.DB.UnmarkApplied(r.Context(), u.ID, id); err != nil {
		writeStoreError(w, r, "Failed to unmark job: ", err)
		return
	}
	h.changed(r, u.ID, id, false)
	writeJSON(w, map[string]any{"ok": true, "job_id": id})
}

func (h AppliedHandler) changed(r *http.Request, userID, jobID string, applied bool) {
	h.Hub.Publish(events.MakeEvent(RequestIDFrom(r.Context()), events.TypeAppliedChanged, 1,
		map[string]any{"job_id": jobID, "applied": applied}).ForUser(userID))
}

func lookupJob(w http.ResponseWriter, r *http.Request, db *store.DB, id string) (store.Job, bool) {
	if strings.TrimSpace(id) == "" {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "job_id is required")
		return store.Job{}, false
	}
	job, err := db.GetJob(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "job_not_found", "job not found")
		return store.Job{}, false
	}
	if err != nil {
		writeStoreError(w, r, "Failed to load job: ", err)
		return store.Job{}, false
	}
	return job, true
}

func perPage(r *http.Request, cfg *config.Config) int {
	if n := queryInt(r, "per_page"); n > 0 {
		return n
	}
	if cfg != nil && cfg.Tracker.PerPage > 0 {
		return cfg.Tracker.PerPage
	}
	return tracker.DefaultPerPage
}
