package httpapi

import (
	"net/http"

	"internhunt-engine/internal/store"
)

type DBHandler struct {
	DB *store.DB
}

func (h DBHandler) Checkpoint(w http.ResponseWriter, r *http.Request) {
	if !IsLocal(r) {
		WriteError(w, r, http.StatusForbidden, "forbidden", "forbidden")
		return
	}
	if h.DB.Dialect != store.DialectSQLite {
		WriteError(w, r, http.StatusNotImplemented, "unsupported", "checkpoint is only available for sqlite")
		return
	}
	if err := h.DB.Checkpoint(r.Context()); err != nil {
		writeStoreError(w, r, "Checkpoint failed: ", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
