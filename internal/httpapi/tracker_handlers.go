package httpapi

import (
	"net/http"

	"internhunt-engine/internal/auth"
	"internhunt-engine/internal/config"
	"internhunt-engine/internal/store"
	"internhunt-engine/internal/tracker"
)

type TrackerHandler struct {
	DB   *store.DB
	Cfg  *config.Config
	Auth *auth.Service
}

type trackerResponse struct {
	tracker.Page[tracker.Row]
	Categories       []string `json:"categories"`
	TotalJobs        int      `json:"total_jobs"`
	AppliedCount     int      `json:"applied_count"`
	NotSuitableCount int      `json:"not_suitable_count"`
	SignedIn         bool     `json:"signed_in"`
}

// Get serves the browse view. Anonymous callers see jobs without marks.
func (h TrackerHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := optionalUser(r, h.Auth)
	if err != nil {
		writeStoreError(w, r, "Failed to load session: ", err)
		return
	}
	snap, err := tracker.Load(r.Context(), h.DB, u.ID)
	if err != nil {
		writeStoreError(w, r, "Failed to load job listings: ", err)
		return
	}

	q := r.URL.Query()
	rows := tracker.Browse(snap.Rows, tracker.Filter{
		Search:          q.Get("q"),
		Category:        q.Get("category"),
		ShowNotSuitable: queryBool(r, "show_not_suitable"),
	})
	writeJSON(w, trackerResponse{
		Page:             tracker.Paginate(rows, queryInt(r, "page"), perPage(r, h.Cfg)),
		Categories:       tracker.Categories(snap.Rows),
		TotalJobs:        len(snap.Rows),
		AppliedCount:     snap.AppliedCount,
		NotSuitableCount: snap.NotSuitableCount,
		SignedIn:         u.ID != "",
	})
}
