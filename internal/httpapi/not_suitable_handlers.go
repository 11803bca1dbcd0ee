package httpapi

import (
	"net/http"

	"internhunt-engine/internal/events"
	"internhunt-engine/internal/store"
)

type NotSuitableHandler struct {
	DB  *store.DB
	Hub *events.Hub
}

func (h NotSuitableHandler) List(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	list, err := h.DB.ListNotSuitable(r.Context(), u.ID)
	if err != nil {
		writeStoreError(w, r, "Failed to fetch not suitable jobs: ", err)
		return
	}
	writeJSON(w, map[string]any{"jobs": list, "count": len(list)})
}

func (h NotSuitableHandler) Create(w http.ResponseWriter, r *http.Request) {
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
	if err := h.DB.MarkNotSuitable(r.Context(), u.ID, job.JobPosting, req.Reason); err != nil {
		writeStoreError(w, r, "Failed to mark job as not suitable: ", err)
		return
	}
	h.changed(r, u.ID, job.ID, true)
	WriteJSON(w, http.StatusCreated, map[string]any{"ok": true, "job_id": job.ID})
}

func (h NotSuitableHandler) Count(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	n, err := h.DB.CountNotSuitable(r.Context(), u.ID)
	if err != nil {
		writeStoreError(w, r, "Failed to count not suitable jobs: ", err)
		return
	}
	writeJSON(w, map[string]int{"count": n})
}

func (h NotSuitableHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	id := pathID(r, "/api/not-suitable/")
	if id == "" {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid job id")
		return
	}
	if err := h.DB.UnmarkNotSuitable(r.Context(), u.ID, id); err != nil {
		writeStoreError(w, r, "Failed to unmark job: ", err)
		return
	}
	h.changed(r, u.ID, id, false)
	writeJSON(w, map[string]any{"ok": true, "job_id": id})
}

func (h NotSuitableHandler) changed(r *http.Request, userID, jobID string, marked bool) {
	h.Hub.Publish(events.MakeEvent(RequestIDFrom(r.Context()), events.TypeNotSuitableChanged, 1,
		map[string]any{"job_id": jobID, "not_suitable": marked}).ForUser(userID))
}
