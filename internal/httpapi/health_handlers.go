package httpapi

import (
	"net/http"
	"time"

	"internhunt-engine/internal/events"
	"internhunt-engine/internal/scrape"
	"internhunt-engine/internal/store"
)

type HealthHandler struct {
	DB     *store.DB
	Hub    *events.Hub
	Syncer *scrape.Syncer
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{
		"ok":   true,
		"time": time.Now().UTC().Format(time.RFC3339),
	}
	if h.DB != nil {
		out["storage"] = h.DB.Dialect
		if v, err := h.DB.SchemaVersion(r.Context()); err == nil {
			out["schema_version"] = v
		} else {
			out["ok"] = false
			out["storage_error"] = err.Error()
		}
		if n, err := h.DB.CountActiveJobs(r.Context()); err == nil {
			out["active_jobs"] = n
		}
	}
	if h.Hub != nil {
		out["subscribers"] = h.Hub.Len()
	}
	if h.Syncer != nil {
		out["sync"] = h.Syncer.Status.Load()
	}
	status := http.StatusOK
	if out["ok"] == false {
		status = http.StatusServiceUnavailable
	}
	WriteJSON(w, status, out)
}
